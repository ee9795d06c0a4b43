package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"qrpass/internal/domain"
	"qrpass/internal/domain/entities"
	"qrpass/internal/ports/output"
)

var _ output.ParticipantRepository = (*ParticipantRepository)(nil)

const uniqueViolation = "23505"

const (
	existsParticipantSQL = `SELECT EXISTS (SELECT 1 FROM participants WHERE email = $1)`

	insertParticipantSQL = `
		INSERT INTO participants (id, name, email, phone, team)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	findParticipantByEmailSQL = `
		SELECT id, name, email, phone, team, created_at
		FROM participants
		WHERE email = $1
		LIMIT 1`
)

// DBTX is the subset of *pgxpool.Pool the repository needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ParticipantRepository implements output.ParticipantRepository on pgx.
type ParticipantRepository struct {
	db DBTX
}

// NewParticipantRepository creates a ParticipantRepository.
func NewParticipantRepository(db DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, existsParticipantSQL, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check participant exists: %w", err)
	}
	return exists, nil
}

func (r *ParticipantRepository) Insert(ctx context.Context, participant *entities.Participant) error {
	var createdAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, insertParticipantSQL,
		participant.ID,
		participant.Name,
		participant.Email,
		participant.Phone,
		participant.Team,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert participant %s: %w", participant.ID, domain.ErrParticipantExists)
		}
		return fmt.Errorf("insert participant %s: %w", participant.ID, err)
	}
	participant.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return nil
}

func (r *ParticipantRepository) FindByEmail(ctx context.Context, email string) (*entities.Participant, error) {
	var (
		p         entities.Participant
		createdAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, findParticipantByEmailSQL, email).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Team,
		&createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant by email: %w", err)
	}
	p.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return &p, nil
}
