// Package prometheus implements [parley.Metrics] with Prometheus collectors
// and serves them over HTTP.
package prometheus

import (
	"strconv"
	"time"

	"github.com/fwojciec/parley"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "parley"

// Interface compliance check.
var _ parley.Metrics = (*Metrics)(nil)

// Metrics records session, rendering, and transport activity.
type Metrics struct {
	sessionsStarted  *prometheus.CounterVec
	sessionsEnded    *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
	fragmentsFlushed prometheus.Counter
	flushes          prometheus.Counter
	flushSize        prometheus.Histogram
	reconciliations  *prometheus.CounterVec
	decodeFailures   *prometheus.CounterVec
	reconnects       *prometheus.CounterVec
	reconnectDelay   prometheus.Histogram
	connectionState  *prometheus.GaugeVec
	audioDropped     prometheus.Counter
}

// New creates the collectors and registers them on reg. It panics if any
// collector is already registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_started_total",
				Help:      "Total number of sessions started",
			},
			[]string{"mode"},
		),
		sessionsEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_ended_total",
				Help:      "Total number of sessions ended",
			},
			[]string{"mode", "reason"},
		),
		sessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of currently active sessions",
			},
		),
		fragmentsFlushed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delta_fragments_flushed_total",
				Help:      "Total number of text fragments appended to render targets",
			},
		),
		flushes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delta_flushes_total",
				Help:      "Total number of batched appends to render targets",
			},
		),
		flushSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delta_flush_fragments",
				Help:      "Fragments per batched append",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
		),
		reconciliations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciliations_total",
				Help:      "Total number of final-text reconciliations",
			},
			[]string{"corrected"},
		),
		decodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_failures_total",
				Help:      "Total number of malformed records or frames skipped",
			},
			[]string{"source"}, // source: sse, websocket
		),
		reconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconnects_scheduled_total",
				Help:      "Total number of reconnect attempts scheduled",
			},
			[]string{"attempt"},
		),
		reconnectDelay: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconnect_delay_seconds",
				Help:      "Backoff delay before each reconnect attempt",
				Buckets:   []float64{1, 2, 4, 8, 10},
			},
		),
		connectionState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connection_state",
				Help:      "Current voice socket state; 1 for the active state",
			},
			[]string{"state"},
		),
		audioDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audio_chunks_dropped_total",
				Help:      "Total number of captured audio chunks dropped while disconnected",
			},
		),
	}
	reg.MustRegister(
		m.sessionsStarted,
		m.sessionsEnded,
		m.sessionsActive,
		m.fragmentsFlushed,
		m.flushes,
		m.flushSize,
		m.reconciliations,
		m.decodeFailures,
		m.reconnects,
		m.reconnectDelay,
		m.connectionState,
		m.audioDropped,
	)
	return m
}

func (m *Metrics) SessionStarted(mode parley.SessionMode) {
	m.sessionsStarted.WithLabelValues(string(mode)).Inc()
	m.sessionsActive.Inc()
}

func (m *Metrics) SessionEnded(mode parley.SessionMode, reason parley.EndReason) {
	m.sessionsEnded.WithLabelValues(string(mode), string(reason)).Inc()
	m.sessionsActive.Dec()
}

func (m *Metrics) DeltasFlushed(fragments int) {
	m.flushes.Inc()
	m.fragmentsFlushed.Add(float64(fragments))
	m.flushSize.Observe(float64(fragments))
}

func (m *Metrics) Reconciled(corrected bool) {
	m.reconciliations.WithLabelValues(strconv.FormatBool(corrected)).Inc()
}

func (m *Metrics) DecodeFailed(source string) {
	m.decodeFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) ReconnectScheduled(attempt int, delay time.Duration) {
	m.reconnects.WithLabelValues(strconv.Itoa(attempt)).Inc()
	m.reconnectDelay.Observe(delay.Seconds())
}

// ConnectionStateChanged sets the gauge for state to 1 and every other
// known state to 0.
func (m *Metrics) ConnectionStateChanged(state parley.ConnectionState) {
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.connectionState.WithLabelValues(s.String()).Set(v)
	}
}

func (m *Metrics) AudioChunkDropped() {
	m.audioDropped.Inc()
}

var connectionStates = []parley.ConnectionState{
	parley.ConnDisconnected,
	parley.ConnConnecting,
	parley.ConnConnected,
	parley.ConnClosing,
	parley.ConnErroring,
	parley.ConnReconnecting,
}
