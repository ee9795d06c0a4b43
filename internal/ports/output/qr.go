package output

import "context"

// IDGenerator issues participant IDs.
type IDGenerator interface {
	NewID() string
}

// QREncoder renders payload as a QR image written to destination.
type QREncoder interface {
	Encode(ctx context.Context, payload, destination string) error
}
