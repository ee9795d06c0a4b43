package output

import (
	"context"

	"qrpass/internal/domain/entities"
)

// ParticipantRepository is the participants table. Exists separates
// "no such email" (false, nil) from a failed lookup (err != nil).
type ParticipantRepository interface {
	Exists(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, participant *entities.Participant) error
	FindByEmail(ctx context.Context, email string) (*entities.Participant, error)
}
