package watcher

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"FaceRec/pkg/utils"
)

// Capture turns frames into PNG snapshots that fit the relay's body limit.
type Capture struct {
	source    FrameSource
	bodyLimit int
	encoder   png.Encoder
}

// NewCapture returns a Capture. A bodyLimit of zero disables the size check.
func NewCapture(source FrameSource, bodyLimit int) *Capture {
	return &Capture{
		source:    source,
		bodyLimit: bodyLimit,
		encoder:   png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

func (c *Capture) Open(ctx context.Context) error {
	return c.source.Open(ctx)
}

func (c *Capture) Close() error {
	return c.source.Close()
}

// Snapshot encodes the current frame. It fails with ErrSnapshotTooLarge
// instead of sending a request the relay would refuse.
func (c *Capture) Snapshot(ctx context.Context) ([]byte, error) {
	frame, err := c.source.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture frame: %w", err)
	}

	var buf bytes.Buffer
	if err := c.encoder.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	if size := utils.EncodedRequestSize(buf.Len()); c.bodyLimit > 0 && size > c.bodyLimit {
		return nil, fmt.Errorf("%w: %d bytes > %d bytes", ErrSnapshotTooLarge, size, c.bodyLimit)
	}

	return buf.Bytes(), nil
}
