package parley

import "context"

// CaptureDevice produces encoded audio chunks for continuous mode.
type CaptureDevice interface {
	// Acquire opens the device. Chunks are delivered to the handler
	// registered on the returned stream until Release is called.
	Acquire(ctx context.Context) (CaptureStream, error)
	Release() error
}

// CaptureStream delivers captured chunks. Chunks captured before a handler
// is registered are discarded.
type CaptureStream interface {
	OnChunk(handler func(chunk []byte))
}
