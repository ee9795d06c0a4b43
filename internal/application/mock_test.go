package application

import (
	"context"
	"fmt"

	"qrpass/internal/domain"
	"qrpass/internal/domain/entities"
)

// MockParticipantRepository is an in-memory participants table; the
// func fields override individual calls.
type MockParticipantRepository struct {
	ExistsFunc func(ctx context.Context, email string) (bool, error)
	InsertFunc func(ctx context.Context, participant *entities.Participant) error

	Rows        []entities.Participant
	ExistsCalls int
	InsertCalls int
}

func (m *MockParticipantRepository) Exists(ctx context.Context, email string) (bool, error) {
	m.ExistsCalls++
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, email)
	}
	for _, r := range m.Rows {
		if r.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockParticipantRepository) Insert(ctx context.Context, participant *entities.Participant) error {
	m.InsertCalls++
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, participant)
	}
	m.Rows = append(m.Rows, *participant)
	return nil
}

func (m *MockParticipantRepository) FindByEmail(_ context.Context, email string) (*entities.Participant, error) {
	for _, r := range m.Rows {
		if r.Email == email {
			p := r
			return &p, nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

type MockIDGenerator struct {
	Calls int
}

func (m *MockIDGenerator) NewID() string {
	m.Calls++
	return fmt.Sprintf("OSW_RG%010d", m.Calls)
}

type encodeCall struct {
	Payload     string
	Destination string
}

type MockQREncoder struct {
	EncodeFunc func(ctx context.Context, payload, destination string) error
	Calls      []encodeCall
}

func (m *MockQREncoder) Encode(ctx context.Context, payload, destination string) error {
	m.Calls = append(m.Calls, encodeCall{Payload: payload, Destination: destination})
	if m.EncodeFunc != nil {
		return m.EncodeFunc(ctx, payload, destination)
	}
	return nil
}

type sendCall struct {
	ToEmail, ToName, ID, QRPath string
}

type MockNotifier struct {
	SendFunc func(ctx context.Context, toEmail, toName, id, qrPath string) error
	Calls    []sendCall
}

func (m *MockNotifier) Send(ctx context.Context, toEmail, toName, id, qrPath string) error {
	m.Calls = append(m.Calls, sendCall{ToEmail: toEmail, ToName: toName, ID: id, QRPath: qrPath})
	if m.SendFunc != nil {
		return m.SendFunc(ctx, toEmail, toName, id, qrPath)
	}
	return nil
}

type MockRecorder struct {
	Results []domain.RowResult
}

func (m *MockRecorder) Observe(result domain.RowResult) {
	m.Results = append(m.Results, result)
}
