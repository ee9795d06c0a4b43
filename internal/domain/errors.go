package domain

import "errors"

// Domain errors.
var (
	ErrParticipantNotFound = errors.New("participant non trouvé")
	ErrParticipantExists   = errors.New("participant déjà inscrit")
	ErrEmptyPayload        = errors.New("le contenu du QR code est vide")
	ErrRosterNotFound      = errors.New("fichier des participants introuvable")
	ErrUnsupportedRoster   = errors.New("format du fichier des participants non supporté")
)
