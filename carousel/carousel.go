// Package carousel tracks which image each product card is showing.
package carousel

import "sync"

// View is the per-entity view state.
type View struct {
	Index int `json:"index"`
}

// State maps entity ids to their view state. The zero value is not usable; call New.
// Entries live as long as the list they were built for: Reset whenever it is refetched.
type State struct {
	mu    sync.Mutex
	views map[string]View
}

func New() *State {
	return &State{views: make(map[string]View)}
}

// Active returns the index shown for id, clamped to count.
func (s *State) Active(id string, count int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.views[id].Index
	if count <= 0 || i >= count || i < 0 {
		return 0
	}
	return i
}

// Next moves id forward one image, wrapping to the first. Entities with fewer than two
// images do not move.
func (s *State) Next(id string, count int) int {
	return s.step(id, count, 1)
}

// Prev moves id back one image, wrapping to the last.
func (s *State) Prev(id string, count int) int {
	return s.step(id, count, -1)
}

func (s *State) step(id string, count, delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.views[id].Index
	if count <= 1 {
		return 0
	}
	if cur < 0 || cur >= count {
		cur = 0
	}
	next := ((cur+delta)%count + count) % count
	s.views[id] = View{Index: next}
	return next
}

// Reset drops all view state. ids, when given, are reinitialised at index 0.
func (s *State) Reset(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = make(map[string]View, len(ids))
	for _, id := range ids {
		s.views[id] = View{}
	}
}

// Snapshot copies the current indexes, keyed by entity id.
func (s *State) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.views))
	for id, v := range s.views {
		out[id] = v.Index
	}
	return out
}
