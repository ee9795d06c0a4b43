package domain

import "time"

// RowResult is the outcome of driving one roster row through the pipeline.
// PersistErr and NotifyErr are reported independently; Err holds the cause
// of a StatusFailed row.
type RowResult struct {
	Row        int
	Email      string
	ID         string
	QRPath     string
	Status     RowStatus
	Err        error
	PersistErr error
	NotifyErr  error
	Duration   time.Duration
}

// Persisted reports whether the participant row was written.
func (r RowResult) Persisted() bool {
	return r.ID != "" && r.Status != StatusFailed && r.PersistErr == nil
}

// Notified reports whether the QR e-mail went out.
func (r RowResult) Notified() bool {
	return r.ID != "" && r.Status != StatusFailed && r.NotifyErr == nil
}
