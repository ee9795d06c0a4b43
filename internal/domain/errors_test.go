package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_FrenchMessagesSurviveWrapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrParticipantNotFound, "participant non trouvé"},
		{ErrParticipantExists, "participant déjà inscrit"},
		{ErrEmptyPayload, "le contenu du QR code est vide"},
		{ErrRosterNotFound, "fichier des participants introuvable"},
		{ErrUnsupportedRoster, "format du fichier des participants non supporté"},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("row 3: %w", tt.err)

		assert.ErrorIs(t, wrapped, tt.err)
		assert.Equal(t, "row 3: "+tt.want, wrapped.Error())
	}
}
