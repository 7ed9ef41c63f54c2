package spanstack

import (
	"sync"
	"sync/atomic"

	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// Stacks is a concurrency-safe index of live paths keyed by path id.
// Each top-level invocation attaches its path on entry and detaches it on exit.
type Stacks struct {
	paths sync.Map
	n     atomic.Int64
}

// NewStacks returns an empty index.
func NewStacks() *Stacks {
	return &Stacks{}
}

// Attach indexes p under its id.
func (s *Stacks) Attach(p *Path) {
	if _, loaded := s.paths.LoadOrStore(p.ID(), p); !loaded {
		s.n.Add(1)
	}
}

// Detach removes the path with the given id.
func (s *Stacks) Detach(pathID string) {
	if _, loaded := s.paths.LoadAndDelete(pathID); loaded {
		s.n.Add(-1)
	}
}

// Path returns the path indexed under pathID.
func (s *Stacks) Path(pathID string) (*Path, bool) {
	v, ok := s.paths.Load(pathID)
	if !ok {
		return nil, false
	}
	return v.(*Path), true
}

// Current returns the current span of the path, or nil if it has none.
func (s *Stacks) Current(pathID string) (*tracer.Span, error) {
	p, ok := s.Path(pathID)
	if !ok {
		return nil, ErrUnknownPath
	}
	return p.Current(), nil
}

// Push pushes h onto the path's stack.
func (s *Stacks) Push(pathID string, h *tracer.Span) error {
	p, ok := s.Path(pathID)
	if !ok {
		return ErrUnknownPath
	}
	p.Push(h)
	return nil
}

// Pop pops the top of the path's stack.
func (s *Stacks) Pop(pathID string) (*tracer.Span, error) {
	p, ok := s.Path(pathID)
	if !ok {
		return nil, ErrUnknownPath
	}
	return p.Pop()
}

// Len returns the number of attached paths.
func (s *Stacks) Len() int {
	return int(s.n.Load())
}

// IDs returns the ids of all attached paths in no particular order.
func (s *Stacks) IDs() []string {
	var ids []string
	s.paths.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	return ids
}
