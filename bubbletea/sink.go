package bubbletea

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/parley"
)

// Interface compliance checks.
var (
	_ parley.RenderSink    = (*Sink)(nil)
	_ parley.MessageTarget = (*target)(nil)
)

// Sink implements [parley.RenderSink] by turning every call into a tea.Msg
// for the program. Messages produced before Attach are held and delivered
// in order on Attach.
type Sink struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
	nextID  int
}

// NewSink creates an unattached Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Attach sets the delivery function, typically (*tea.Program).Send.
func (s *Sink) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
	for _, msg := range s.pending {
		send(msg)
	}
	s.pending = nil
}

func (s *Sink) CreateMessageTarget(kind parley.TargetKind) parley.MessageTarget {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()
	s.dispatch(TargetCreatedMsg{ID: id, Kind: kind})
	return &target{sink: s, id: id}
}

func (s *Sink) SetStatus(status parley.Status) {
	s.dispatch(StatusMsg{Status: status})
}

// dispatch holds the lock while sending so messages keep their order.
func (s *Sink) dispatch(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.send == nil {
		s.pending = append(s.pending, msg)
		return
	}
	s.send(msg)
}

type target struct {
	sink *Sink
	id   int
}

func (t *target) Append(text string) {
	t.sink.dispatch(TargetAppendMsg{ID: t.id, Text: text})
}

func (t *target) SetText(text string) {
	t.sink.dispatch(TargetSetTextMsg{ID: t.id, Text: text})
}
