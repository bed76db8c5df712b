//go:build !portaudio

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/parley"
)

// unavailableDevice stands in for the microphone in builds without the
// portaudio tag.
type unavailableDevice struct{}

func newCaptureDevice(*slog.Logger) parley.CaptureDevice {
	return unavailableDevice{}
}

func (unavailableDevice) Acquire(context.Context) (parley.CaptureStream, error) {
	return nil, fmt.Errorf("%w: built without portaudio (rebuild with -tags portaudio)", parley.ErrCaptureUnavailable)
}

func (unavailableDevice) Release() error { return nil }
