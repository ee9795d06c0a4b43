package output

import "qrpass/internal/domain"

// RunRecorder observes row outcomes as the batch progresses.
type RunRecorder interface {
	Observe(result domain.RowResult)
}
