package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrpass/internal/domain"
	"qrpass/internal/domain/entities"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *bool:
			*target = r.values[i].(bool)
		case *string:
			*target = r.values[i].(string)
		case *pgtype.Timestamptz:
			*target = pgtype.Timestamptz{Time: r.values[i].(time.Time), Valid: true}
		default:
			return errors.New("unexpected scan target")
		}
	}
	return nil
}

type fakeDB struct {
	row   fakeRow
	sql   string
	args  []any
	calls int
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls++
	f.sql = sql
	f.args = args
	return f.row
}

func TestParticipantRepository_Exists(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{true}}}
	repo := NewParticipantRepository(db)

	exists, err := repo.Exists(context.Background(), "asha@example.com")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []any{"asha@example.com"}, db.args)
}

func TestParticipantRepository_ExistsError(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: errors.New("connection reset")}}
	repo := NewParticipantRepository(db)

	exists, err := repo.Exists(context.Background(), "asha@example.com")

	require.Error(t, err)
	assert.False(t, exists)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestParticipantRepository_Insert(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{created}}}
	repo := NewParticipantRepository(db)
	p := &entities.Participant{ID: "OSW_RG0123456789", Name: "Asha", Email: "asha@example.com", Phone: "555", Team: "Alpha"}

	require.NoError(t, repo.Insert(context.Background(), p))

	assert.Equal(t, []any{"OSW_RG0123456789", "Asha", "asha@example.com", "555", "Alpha"}, db.args)
	assert.Equal(t, created, p.CreatedAt)
}

func TestParticipantRepository_InsertUniqueViolation(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: &pgconn.PgError{Code: "23505", Message: "duplicate key"}}}
	repo := NewParticipantRepository(db)

	err := repo.Insert(context.Background(), &entities.Participant{ID: "X", Email: "a@b.c"})

	assert.ErrorIs(t, err, domain.ErrParticipantExists)
}

func TestParticipantRepository_FindByEmail(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{"OSW_RGAAAA", "Asha", "asha@example.com", "555", "Alpha", created}}}
	repo := NewParticipantRepository(db)

	p, err := repo.FindByEmail(context.Background(), "asha@example.com")

	require.NoError(t, err)
	assert.Equal(t, &entities.Participant{
		ID: "OSW_RGAAAA", Name: "Asha", Email: "asha@example.com", Phone: "555", Team: "Alpha", CreatedAt: created,
	}, p)
}

func TestParticipantRepository_FindByEmailNotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewParticipantRepository(db)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_participants.up.sql")
	assert.Contains(t, names, "000001_create_participants.down.sql")
}
