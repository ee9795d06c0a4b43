package entities

import (
	"strings"
	"time"
)

// DefaultParticipantName replaces a blank name column.
const DefaultParticipantName = "Participant"

// ParticipantRecord is one data row of the roster file.
type ParticipantRecord struct {
	Row   int // 1-based position among data rows
	Name  string
	Email string
	Phone string
	Team  string
}

// Normalize trims every field and applies the name placeholder.
func (r ParticipantRecord) Normalize() ParticipantRecord {
	out := ParticipantRecord{
		Row:   r.Row,
		Name:  strings.TrimSpace(r.Name),
		Email: strings.TrimSpace(r.Email),
		Phone: strings.TrimSpace(r.Phone),
		Team:  strings.TrimSpace(r.Team),
	}
	if out.Name == "" {
		out.Name = DefaultParticipantName
	}
	return out
}

// Participant is a registered attendee as stored in the participants table.
// ID is issued once and never changes.
type Participant struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Team      string
	CreatedAt time.Time
}

// NewParticipant builds the stored tuple for a freshly issued ID.
func NewParticipant(id string, rec ParticipantRecord) *Participant {
	return &Participant{
		ID:    id,
		Name:  rec.Name,
		Email: rec.Email,
		Phone: rec.Phone,
		Team:  rec.Team,
	}
}
