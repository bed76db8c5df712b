package parley_test

import (
	"testing"
	"time"

	"github.com/fwojciec/parley"
	"github.com/stretchr/testify/assert"
)

func TestBackoff_Delay(t *testing.T) {
	t.Parallel()

	b := parley.DefaultBackoff()
	want := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		10000 * time.Millisecond,
	}
	for attempt, d := range want {
		assert.Equal(t, d, b.Delay(attempt), "attempt %d", attempt)
	}
}

func TestBackoff_DelayStaysCapped(t *testing.T) {
	t.Parallel()

	b := parley.DefaultBackoff()
	assert.Equal(t, 10*time.Second, b.Delay(40))
	assert.Equal(t, 10*time.Second, b.Delay(1000))
}

func TestDefaultFlushPolicy(t *testing.T) {
	t.Parallel()

	p := parley.DefaultFlushPolicy()
	assert.Equal(t, 5, p.MaxFragments)
	assert.Equal(t, 100*time.Millisecond, p.Interval)
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	t.Run("authoritative wins", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Hello", parley.Reconcile("Hell", "Hello", true))
	})

	t.Run("local kept without authoritative", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Hell", parley.Reconcile("Hell", "", false))
	})

	t.Run("empty authoritative clears local", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", parley.Reconcile("Hell", "", true))
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			local, authoritative string
			ok                   bool
		}{
			{"Hell", "Hello", true},
			{"Hello", "Hello", true},
			{"abc", "", false},
			{"abc", "", true},
			{"", "x", true},
		}
		for _, tc := range tests {
			once := parley.Reconcile(tc.local, tc.authoritative, tc.ok)
			assert.Equal(t, once, parley.Reconcile(once, tc.authoritative, tc.ok))
		}
	})
}

func TestStateStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "active", parley.SessionActive.String())
	assert.Equal(t, "finalizing", parley.SessionFinalizing.String())
	assert.Equal(t, "reconnecting", parley.ConnReconnecting.String())
	assert.Equal(t, "erroring", parley.ConnErroring.String())
	assert.Equal(t, "unknown", parley.ConnectionState(42).String())
}
