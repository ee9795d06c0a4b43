// Package qrcode renders participant QR passes as PNG files.
package qrcode

import (
	"context"
	"fmt"
	"image/color"

	qr "github.com/skip2/go-qrcode"

	"qrpass/internal/domain"
	"qrpass/internal/ports/output"
)

var _ output.QREncoder = (*Encoder)(nil)

const (
	minVersion     = 2
	pixelsPerPoint = 10
)

var (
	darkGreen = color.RGBA{R: 0x00, G: 0x64, B: 0x00, A: 0xff}
	white     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Encoder writes QR symbols at a fixed configuration: version 2 or the
// smallest larger version that fits, high recovery level, 10px modules,
// dark green on white.
type Encoder struct {
	level      qr.RecoveryLevel
	foreground color.Color
	background color.Color
}

// NewEncoder returns an Encoder with the pass configuration.
func NewEncoder() *Encoder {
	return &Encoder{
		level:      qr.High,
		foreground: darkGreen,
		background: white,
	}
}

// Encode renders payload and writes it to destination, replacing any existing file.
func (e *Encoder) Encode(ctx context.Context, payload, destination string) error {
	if payload == "" {
		return domain.ErrEmptyPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	code, err := qr.NewWithForcedVersion(payload, minVersion, e.level)
	if err != nil {
		// Payload does not fit version 2; let the library pick the smallest version that does.
		code, err = qr.New(payload, e.level)
		if err != nil {
			return fmt.Errorf("build qr symbol: %w", err)
		}
	}
	code.ForegroundColor = e.foreground
	code.BackgroundColor = e.background

	if err := code.WriteFile(-pixelsPerPoint, destination); err != nil {
		return fmt.Errorf("write qr image %s: %w", destination, err)
	}
	return nil
}
