package mock

import (
	"context"

	"github.com/fwojciec/parley"
)

// Interface compliance checks.
var (
	_ parley.CaptureDevice = (*CaptureDevice)(nil)
	_ parley.CaptureStream = (*CaptureStream)(nil)
)

// CaptureDevice is a test double for parley.CaptureDevice.
// AcquireFn panics when nil. ReleaseFn is a nil-safe no-op.
type CaptureDevice struct {
	AcquireFn func(ctx context.Context) (parley.CaptureStream, error)
	ReleaseFn func() error
}

// Acquire delegates to AcquireFn.
func (d *CaptureDevice) Acquire(ctx context.Context) (parley.CaptureStream, error) {
	return d.AcquireFn(ctx)
}

// Release delegates to ReleaseFn. Returns nil when ReleaseFn is not set.
func (d *CaptureDevice) Release() error {
	if d.ReleaseFn == nil {
		return nil
	}
	return d.ReleaseFn()
}

// CaptureStream is a test double for parley.CaptureStream.
// OnChunkFn is nil-safe.
type CaptureStream struct {
	OnChunkFn func(handler func(chunk []byte))
}

// OnChunk delegates to OnChunkFn.
func (s *CaptureStream) OnChunk(handler func(chunk []byte)) {
	if s.OnChunkFn != nil {
		s.OnChunkFn(handler)
	}
}
