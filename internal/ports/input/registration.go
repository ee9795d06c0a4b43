package input

import (
	"context"

	"qrpass/internal/domain"
	"qrpass/internal/domain/entities"
)

type RegistrationUseCase interface {
	Register(ctx context.Context, record entities.ParticipantRecord) domain.RowResult
	RegisterAll(ctx context.Context, records []entities.ParticipantRecord) []domain.RowResult
}
