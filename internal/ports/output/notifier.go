package output

import "context"

// Notifier delivers the QR pass of a registered participant.
type Notifier interface {
	Send(ctx context.Context, toEmail, toName, id, qrPath string) error
}
