package storage

import (
	"context"

	"go.uber.org/zap"

	"qrpass/internal/ports/output"
)

var _ output.QREncoder = (*MirroringEncoder)(nil)

// Uploader copies a local file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// MirroringEncoder writes the pass locally through next, then uploads it.
// Upload failures are logged; the local image stays authoritative.
type MirroringEncoder struct {
	next     output.QREncoder
	uploader Uploader
	logger   *zap.Logger
}

func NewMirroringEncoder(next output.QREncoder, uploader Uploader, logger *zap.Logger) *MirroringEncoder {
	return &MirroringEncoder{next: next, uploader: uploader, logger: logger}
}

func (e *MirroringEncoder) Encode(ctx context.Context, payload, destination string) error {
	if err := e.next.Encode(ctx, payload, destination); err != nil {
		return err
	}
	key, err := e.uploader.Upload(ctx, destination)
	if err != nil {
		e.logger.Warn("QR mirror upload failed", zap.String("path", destination), zap.Error(err))
		return nil
	}
	e.logger.Debug("QR mirrored", zap.String("key", key))
	return nil
}
