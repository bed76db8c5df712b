//go:build portaudio

package main

import (
	"log/slog"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/portaudio"
)

func newCaptureDevice(logger *slog.Logger) parley.CaptureDevice {
	return portaudio.NewDevice(logger)
}
