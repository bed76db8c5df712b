package sse

import (
	"errors"
	"log/slog"

	"github.com/fwojciec/parley"
	parleyjson "github.com/fwojciec/parley/json"
)

// metricsSource labels decode failures from this package.
const metricsSource = "sse"

// Decoder turns chunks of the chat endpoint's event stream into events.
// Malformed payloads are logged and skipped; decoding continues with the
// next record.
type Decoder struct {
	framer  Framer
	logger  *slog.Logger
	metrics parley.Metrics
}

// NewDecoder returns a Decoder. A nil logger uses slog.Default and nil
// metrics discards counts.
func NewDecoder(logger *slog.Logger, metrics parley.Metrics) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = parley.NopMetrics{}
	}
	return &Decoder{logger: logger, metrics: metrics}
}

// Decode consumes one chunk and returns the events it completes.
func (d *Decoder) Decode(chunk []byte) []parley.Event {
	return d.decode(d.framer.Write(chunk))
}

// Close decodes whatever remains buffered at end of stream.
func (d *Decoder) Close() []parley.Event {
	return d.decode(d.framer.Flush())
}

func (d *Decoder) decode(records []Record) []parley.Event {
	var events []parley.Event
	for _, r := range records {
		evt, err := parleyjson.DecodeRecord([]byte(r.Data))
		switch {
		case errors.Is(err, parleyjson.ErrUnknownPayload):
			d.logger.Debug("sse: ignoring record", "data", r.Data)
			continue
		case err != nil:
			d.logger.Warn("sse: skipping malformed record", "error", err, "data", r.Data)
			d.metrics.DecodeFailed(metricsSource)
			continue
		}
		events = append(events, evt)
	}
	return events
}
