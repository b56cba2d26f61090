package utils

import "sync/atomic"

// Guard admits one mutation at a time. A page holds one per session in place of a disabled
// submit button.
type Guard struct {
	busy atomic.Bool
}

// Acquire reports whether the caller may proceed. A true result must be paired with Release.
func (g *Guard) Acquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Guard) Release() {
	g.busy.Store(false)
}

func (g *Guard) Busy() bool {
	return g.busy.Load()
}
