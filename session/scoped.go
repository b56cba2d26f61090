package session

import (
	"sync"
	"time"
)

type scopedEntry[T any] struct {
	v    *T
	seen time.Time
}

// Scoped holds one value per session, created on first use and dropped when the session is
// destroyed or expires. Pages keep their view state in it.
type Scoped[T any] struct {
	mu    sync.Mutex
	items map[string]*scopedEntry[T]
	newFn func() *T
	now   func() time.Time
}

// NewScoped returns a Scoped whose values are built by newFn and dropped when m ends their
// session. m may be nil in tests.
func NewScoped[T any](m *Manager, newFn func() *T) *Scoped[T] {
	s := &Scoped[T]{items: make(map[string]*scopedEntry[T]), newFn: newFn, now: time.Now}
	if m != nil {
		s.now = func() time.Time { return m.now() }
		m.OnDestroy(s.Drop)
		m.track(s)
	}
	return s
}

// Get returns the value for session id, creating it if needed.
func (s *Scoped[T]) Get(id string) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		e = &scopedEntry[T]{v: s.newFn()}
		s.items[id] = e
	}
	e.seen = s.now()
	return e.v
}

func (s *Scoped[T]) Drop(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Sweep drops values not touched for longer than idle and reports how many went.
func (s *Scoped[T]) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.items {
		if now.Sub(e.seen) > idle {
			delete(s.items, id)
			n++
		}
	}
	return n
}

func (s *Scoped[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
