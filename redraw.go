package drawing

import "sync"

// Change describes what a mutation affected.
type Change uint8

// Change flags.
const (
	// ShapeChanged is set when anything that affects the rendered image
	// changed: geometry, placement, colors, display.
	ShapeChanged Change = 1 << iota
	// SelectionChanged is set when selection masks changed.
	SelectionChanged
)

func (c Change) String() string {
	switch c {
	case 0:
		return "none"
	case ShapeChanged:
		return "shape"
	case SelectionChanged:
		return "selection"
	}
	return "shape|selection"
}

// RedrawFunc is notified after every mutation of a node it is attached to.
// It is propagated from a parent to every child added under it.
type RedrawFunc func(n *Node, c Change)

// RedrawTracker coalesces redraw notifications between frames.
//
// The frame loop owner attaches Notify as the scene root's redraw callback
// and calls Take once per frame; several mutations between two frames
// collapse into a single owed redraw.
//
// RedrawTracker is safe for concurrent use.
type RedrawTracker struct {
	mu      sync.Mutex
	pending Change
	count   int
}

// Notify records a change. It matches RedrawFunc.
func (t *RedrawTracker) Notify(_ *Node, c Change) {
	t.mu.Lock()
	t.pending |= c
	t.count++
	t.mu.Unlock()
}

// Pending returns the accumulated changes without clearing them.
func (t *RedrawTracker) Pending() Change {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Take returns the accumulated changes and the number of notifications
// since the last Take, and clears both.
func (t *RedrawTracker) Take() (Change, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, n := t.pending, t.count
	t.pending, t.count = 0, 0
	return c, n
}
