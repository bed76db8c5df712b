//go:build portaudio

package portaudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fwojciec/parley"
	pa "github.com/gordonklaus/portaudio"
)

// Interface compliance checks.
var (
	_ parley.CaptureDevice = (*Device)(nil)
	_ parley.CaptureStream = (*capture)(nil)
)

// Device captures from the default input device.
type Device struct {
	logger *slog.Logger

	mu      sync.Mutex
	stream  *pa.Stream
	capture *capture
	done    chan struct{}
}

// NewDevice returns a Device. Nothing is opened until Acquire.
func NewDevice(logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{logger: logger}
}

// Acquire initializes PortAudio and starts reading the default input
// stream. Chunks of FramesPerBuffer samples are encoded as PCM16.
func (d *Device) Acquire(ctx context.Context) (parley.CaptureStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		return nil, errors.New("portaudio: device already acquired")
	}

	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	in := make([]int16, FramesPerBuffer)
	stream, err := pa.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, in)
	if err != nil {
		_ = pa.Terminate()
		return nil, fmt.Errorf("portaudio: open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = pa.Terminate()
		return nil, fmt.Errorf("portaudio: start input stream: %w", err)
	}

	d.stream = stream
	d.capture = &capture{}
	d.done = make(chan struct{})
	d.logger.Debug("portaudio: capture started",
		"sample_rate", SampleRate, "channels", Channels, "frames", FramesPerBuffer)

	go d.loop(ctx, stream, in, d.capture, d.done)
	return d.capture, nil
}

// Release stops the stream and waits for the read loop to exit. It is safe
// to call when nothing is acquired.
func (d *Device) Release() error {
	d.mu.Lock()
	stream, c, done := d.stream, d.capture, d.done
	d.stream, d.capture, d.done = nil, nil, nil
	d.mu.Unlock()
	if stream == nil {
		return nil
	}

	c.stop()
	stopErr := stream.Stop()
	<-done
	closeErr := stream.Close()
	termErr := pa.Terminate()
	d.logger.Debug("portaudio: capture released")

	if err := errors.Join(stopErr, closeErr, termErr); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	return nil
}

func (d *Device) loop(ctx context.Context, stream *pa.Stream, in []int16, c *capture, done chan struct{}) {
	defer close(done)
	for {
		if ctx.Err() != nil || c.stopped() {
			return
		}
		if err := stream.Read(); err != nil {
			if c.stopped() {
				return
			}
			// Input overflow is recoverable; keep reading.
			if errors.Is(err, pa.InputOverflowed) {
				continue
			}
			d.logger.Warn("portaudio: read failed", "error", err)
			return
		}
		c.deliver(EncodePCM16(in))
	}
}

// capture hands chunks to the registered handler.
type capture struct {
	mu      sync.Mutex
	handler func([]byte)
	done    bool
}

func (c *capture) OnChunk(handler func(chunk []byte)) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

func (c *capture) deliver(chunk []byte) {
	c.mu.Lock()
	h, done := c.handler, c.done
	c.mu.Unlock()
	if h == nil || done {
		return
	}
	h(chunk)
}

func (c *capture) stop() {
	c.mu.Lock()
	c.done = true
	c.mu.Unlock()
}

func (c *capture) stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
