// Package postgrest stores participants through a Supabase/PostgREST REST
// endpoint, addressed by the project URL and an API key.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"qrpass/internal/domain"
	"qrpass/internal/domain/entities"
	"qrpass/internal/ports/output"
)

var _ output.ParticipantRepository = (*ParticipantRepository)(nil)

const participantsTable = "participants"

type participantRow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Team      string     `json:"team"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ParticipantRepository implements output.ParticipantRepository against
// <baseURL>/rest/v1/participants.
type ParticipantRepository struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewParticipantRepository creates a ParticipantRepository. A nil client
// means a default client with a 15s timeout.
func NewParticipantRepository(baseURL, apiKey string, client *http.Client) *ParticipantRepository {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ParticipantRepository{
		endpoint: strings.TrimRight(baseURL, "/") + "/rest/v1/" + participantsTable,
		apiKey:   apiKey,
		client:   client,
	}
}

func (r *ParticipantRepository) Exists(ctx context.Context, email string) (bool, error) {
	rows, err := r.selectByEmail(ctx, email, "id")
	if err != nil {
		return false, fmt.Errorf("check participant exists: %w", err)
	}
	return len(rows) > 0, nil
}

func (r *ParticipantRepository) Insert(ctx context.Context, participant *entities.Participant) error {
	body, err := json.Marshal(participantRow{
		ID:    participant.ID,
		Name:  participant.Name,
		Email: participant.Email,
		Phone: participant.Phone,
		Team:  participant.Team,
	})
	if err != nil {
		return fmt.Errorf("insert participant %s: %w", participant.ID, err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("insert participant %s: %w", participant.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert participant %s: %w", participant.ID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("insert participant %s: %w", participant.ID, domain.ErrParticipantExists)
	case resp.StatusCode >= 300:
		return fmt.Errorf("insert participant %s: %w", participant.ID, statusError(resp))
	}
	return nil
}

func (r *ParticipantRepository) FindByEmail(ctx context.Context, email string) (*entities.Participant, error) {
	rows, err := r.selectByEmail(ctx, email, "id,name,email,phone,team,created_at")
	if err != nil {
		return nil, fmt.Errorf("get participant by email: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrParticipantNotFound
	}
	row := rows[0]
	p := &entities.Participant{
		ID:    row.ID,
		Name:  row.Name,
		Email: row.Email,
		Phone: row.Phone,
		Team:  row.Team,
	}
	if row.CreatedAt != nil {
		p.CreatedAt = *row.CreatedAt
	}
	return p, nil
}

func (r *ParticipantRepository) selectByEmail(ctx context.Context, email, columns string) ([]participantRow, error) {
	q := url.Values{}
	q.Set("select", columns)
	q.Set("email", "eq."+email)
	q.Set("limit", "1")

	req, err := r.newRequest(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var rows []participantRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

func (r *ParticipantRepository) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	return req, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
