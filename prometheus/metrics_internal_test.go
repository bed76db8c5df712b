package prometheus

import (
	"testing"
	"time"

	"github.com/fwojciec/parley"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_LabelValues(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.DecodeFailed("websocket")
	m.DecodeFailed("websocket")
	m.DecodeFailed("sse")
	assert.InDelta(t, 2, testutil.ToFloat64(m.decodeFailures.WithLabelValues("websocket")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.decodeFailures.WithLabelValues("sse")), 0)

	m.ReconnectScheduled(3, 4*time.Second)
	assert.InDelta(t, 1, testutil.ToFloat64(m.reconnects.WithLabelValues("3")), 0)

	m.AudioChunkDropped()
	assert.InDelta(t, 1, testutil.ToFloat64(m.audioDropped), 0)
}

func TestMetrics_ConnectionStateIsExclusive(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ConnectionStateChanged(parley.ConnReconnecting)
	m.ConnectionStateChanged(parley.ConnConnected)

	assert.InDelta(t, 1, testutil.ToFloat64(m.connectionState.WithLabelValues(parley.ConnConnected.String())), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.connectionState.WithLabelValues(parley.ConnReconnecting.String())), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.connectionState.WithLabelValues(parley.ConnDisconnected.String())), 0)
}

func TestMetrics_ActiveSessions(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.SessionStarted(parley.ModeContinuous)
	assert.InDelta(t, 1, testutil.ToFloat64(m.sessionsActive), 0)
	m.SessionEnded(parley.ModeContinuous, parley.EndStopped)
	assert.InDelta(t, 0, testutil.ToFloat64(m.sessionsActive), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.sessionsEnded.WithLabelValues("continuous", "stopped")), 0)
}
