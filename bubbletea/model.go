package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/parley"
)

var _ tea.Model = Model{}

const (
	opRequest    = "request"
	opContinuous = "continuous"
	opStop       = "stop"
	opInterrupt  = "interrupt"
)

// Model is the Bubble Tea model for the parley TUI. Display state comes
// from the controller through the [Sink]; key presses call the controller.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	ctrl   Controller
	theme  parley.Theme
	styles Styles

	blocks  []MessageBlock
	targets map[int]TextBlock

	status parley.Status
	// requesting is set while a StartRequest call is outstanding.
	requesting bool
	err        error
	ready      bool
}

// New creates a new TUI Model driving ctrl.
func New(ctrl Controller, theme parley.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:   ti,
		ctrl:    ctrl,
		theme:   theme,
		styles:  NewStyles(theme),
		targets: make(map[int]TextBlock),
	}
}

// Active reports whether a session is streaming.
func (m Model) Active() bool {
	return m.requesting || m.status.Session == parley.SessionActive || m.status.Session == parley.SessionFinalizing
}

// Status returns the last status reported by the controller.
func (m Model) Status() parley.Status { return m.status }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Blocks returns the rendered conversation blocks in display order.
func (m Model) Blocks() []MessageBlock { return m.blocks }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TargetCreatedMsg:
		b := newTextBlock(msg.Kind, m.theme, m.styles)
		m.targets[msg.ID] = b
		m.blocks = append(m.blocks, b)
		return m.refresh(), nil

	case TargetAppendMsg:
		if b, ok := m.targets[msg.ID]; ok {
			b.Append(msg.Text)
		}
		return m.refresh(), nil

	case TargetSetTextMsg:
		if b, ok := m.targets[msg.ID]; ok {
			b.SetText(msg.Text)
		}
		return m.refresh(), nil

	case StatusMsg:
		m.status = msg.Status
		return m, nil

	case ControlDoneMsg:
		if msg.Op == opRequest {
			m.requesting = false
		}
		m.err = controlError(msg)
		return m, m.Input.Focus()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if m.Active() {
			m.err = parley.ErrSessionActive
			return m, nil
		}
		m.Input.SetValue("")
		m.err = nil
		m.requesting = true
		return m, m.control(opRequest, func(ctx context.Context) error {
			return m.ctrl.StartRequest(ctx, text)
		})

	case tea.KeyCtrlR:
		m.err = nil
		if m.status.Mode == parley.ModeContinuous && m.Active() {
			return m, m.control(opStop, m.ctrl.Stop)
		}
		if m.Active() {
			m.err = parley.ErrSessionActive
			return m, nil
		}
		return m, m.control(opContinuous, m.ctrl.StartContinuous)

	case tea.KeyEsc:
		if m.status.Mode == parley.ModeContinuous && m.Active() {
			return m, m.control(opInterrupt, m.ctrl.Interrupt)
		}
		return m, m.control(opStop, m.ctrl.Stop)
	}

	// Character keys go to the input only; 'j'/'k' are also viewport
	// scroll keys.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// control runs fn off the update loop and reports its result.
func (m Model) control(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return ControlDoneMsg{Op: op, Err: fn(context.Background())}
	}
}

// controlError filters out results that are not worth showing.
func controlError(msg ControlDoneMsg) error {
	switch {
	case msg.Err == nil:
		return nil
	case errors.Is(msg.Err, context.Canceled):
		return nil
	case msg.Op != opRequest && errors.Is(msg.Err, parley.ErrNoSession):
		return nil
	}
	return msg.Err
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	var line string
	switch {
	case m.err != nil:
		line = m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.Active():
		line = m.activeStatus()
	default:
		line = m.styles.Muted.Render(m.idleHint())
	}
	return ansi.Truncate(line, m.Viewport.Width, "…")
}

func (m Model) activeStatus() string {
	s := m.status
	if s.Mode != parley.ModeContinuous {
		return m.styles.Muted.Render("Generating... Esc to stop")
	}
	conn := s.Connection.String()
	if s.Connection == parley.ConnReconnecting && s.Attempt > 0 {
		conn = fmt.Sprintf("%s (attempt %d)", conn, s.Attempt)
	}
	return m.styles.Accent.Render("● voice") + " " +
		m.styles.Connection(s.Connection).Render(conn) + " " +
		m.styles.Muted.Render("Esc to interrupt, Ctrl+R to stop")
}

func (m Model) idleHint() string {
	hint := "Enter to send, Ctrl+R for voice, Ctrl+C to quit"
	if m.status.Message != "" {
		return m.status.Message + " · " + hint
	}
	return hint
}
