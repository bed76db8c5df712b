package bubbletea_test

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/parley"
	bt "github.com/fwojciec/parley/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, ctrl bt.Controller) bt.Model {
	t.Helper()
	return initModelWithSize(t, ctrl, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, ctrl bt.Controller, width, height int) bt.Model {
	t.Helper()
	m := bt.New(ctrl, parley.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// fakeController records calls. Each Fn field, when set, replaces the
// default no-op behavior.
type fakeController struct {
	StartRequestFn    func(ctx context.Context, text string) error
	StartContinuousFn func(ctx context.Context) error
	StopFn            func(ctx context.Context) error
	InterruptFn       func(ctx context.Context) error

	mu    sync.Mutex
	calls []string
}

var _ bt.Controller = (*fakeController)(nil)

func (c *fakeController) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *fakeController) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeController) StartRequest(ctx context.Context, text string) error {
	c.record("request:" + text)
	if c.StartRequestFn != nil {
		return c.StartRequestFn(ctx, text)
	}
	return nil
}

func (c *fakeController) StartContinuous(ctx context.Context) error {
	c.record("continuous")
	if c.StartContinuousFn != nil {
		return c.StartContinuousFn(ctx)
	}
	return nil
}

func (c *fakeController) Stop(ctx context.Context) error {
	c.record("stop")
	if c.StopFn != nil {
		return c.StopFn(ctx)
	}
	return nil
}

func (c *fakeController) Interrupt(ctx context.Context) error {
	c.record("interrupt")
	if c.InterruptFn != nil {
		return c.InterruptFn(ctx)
	}
	return nil
}
