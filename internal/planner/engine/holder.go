package engine

import "sync/atomic"

// Holder publishes the current Engine to concurrent readers and lets a
// reload swap in a replacement atomically. In-flight queries keep the
// engine they started with, so they see exactly one catalog generation.
type Holder struct {
	current atomic.Pointer[Engine]
}

// NewHolder creates a Holder publishing the given engine.
func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	h.current.Store(e)
	return h
}

// Engine returns the currently published engine.
func (h *Holder) Engine() *Engine {
	return h.current.Load()
}

// Swap publishes a new engine, replacing the previous one wholesale.
func (h *Holder) Swap(e *Engine) {
	h.current.Store(e)
}
