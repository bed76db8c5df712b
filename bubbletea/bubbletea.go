// Package bubbletea provides a Bubble Tea TUI for parley. [Sink] feeds
// render targets and status from the chat controller into [Model].
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/parley"
)

// Controller starts and stops streaming sessions.
type Controller interface {
	// StartRequest blocks until the request session ends.
	StartRequest(ctx context.Context, text string) error
	StartContinuous(ctx context.Context) error
	Stop(ctx context.Context) error
	// Interrupt discards the response in progress and keeps a continuous
	// session open.
	Interrupt(ctx context.Context) error
}

// Run creates and runs the Bubble Tea program with sink attached. It
// blocks until the program exits. The program quits when ctx is cancelled.
func Run(ctx context.Context, m Model, sink *Sink, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(m, opts...)
	// Send blocks until the program runs, so pending messages are delivered
	// from a separate goroutine.
	go sink.Attach(p.Send)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// TargetCreatedMsg announces a new message target.
type TargetCreatedMsg struct {
	ID   int
	Kind parley.TargetKind
}

// TargetAppendMsg appends text to a target.
type TargetAppendMsg struct {
	ID   int
	Text string
}

// TargetSetTextMsg replaces a target's text.
type TargetSetTextMsg struct {
	ID   int
	Text string
}

// StatusMsg carries a status update.
type StatusMsg struct {
	Status parley.Status
}

// ControlDoneMsg reports the result of a controller call started from a key.
type ControlDoneMsg struct {
	Op  string
	Err error
}
