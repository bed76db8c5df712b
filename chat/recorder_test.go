package chat_test

import (
	"sync"

	"github.com/fwojciec/parley"
)

// recorder is a RenderSink that remembers everything rendered into it.
type recorder struct {
	mu       sync.Mutex
	targets  []*target
	statuses []parley.Status
}

type target struct {
	r       *recorder
	kind    parley.TargetKind
	text    string
	appends []string
	sets    int
}

func (r *recorder) CreateMessageTarget(kind parley.TargetKind) parley.MessageTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &target{r: r, kind: kind}
	r.targets = append(r.targets, t)
	return t
}

func (r *recorder) SetStatus(s parley.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (t *target) Append(text string) {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	t.text += text
	t.appends = append(t.appends, text)
}

func (t *target) SetText(text string) {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	t.text = text
	t.sets++
}

// texts returns the current text of each target of kind, oldest first.
func (r *recorder) texts(kind parley.TargetKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, t := range r.targets {
		if t.kind == kind {
			out = append(out, t.text)
		}
	}
	return out
}

// appends returns the Append calls made on each target of kind.
func (r *recorder) appends(kind parley.TargetKind) [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [][]string
	for _, t := range r.targets {
		if t.kind == kind {
			out = append(out, append([]string(nil), t.appends...))
		}
	}
	return out
}

// sets counts SetText calls across targets of kind.
func (r *recorder) sets(kind parley.TargetKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.targets {
		if t.kind == kind {
			n += t.sets
		}
	}
	return n
}

func (r *recorder) lastStatus() parley.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return parley.Status{}
	}
	return r.statuses[len(r.statuses)-1]
}
