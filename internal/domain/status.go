package domain

// RowStatus is the terminal state of one roster row after registration.
type RowStatus string

const (
	StatusSkipped   RowStatus = "skipped"   // no email on the row
	StatusDuplicate RowStatus = "duplicate" // email already registered
	StatusFailed    RowStatus = "failed"    // lookup or QR encoding failed, nothing written
	StatusPartial   RowStatus = "partial"   // persist and/or notify failed
	StatusDone      RowStatus = "done"
)

// AllStatuses lists every terminal state, in pipeline order.
var AllStatuses = []RowStatus{
	StatusSkipped,
	StatusDuplicate,
	StatusFailed,
	StatusPartial,
	StatusDone,
}
