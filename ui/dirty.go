package ui

import "sync/atomic"

// Dirty marks the rendered screen as stale. Any goroutine may Mark it; only
// the input loop Takes it, right before redrawing. Races cost at most one
// extra or late redraw.
type Dirty struct {
	flag atomic.Bool
}

// Mark requests a redraw.
func (d *Dirty) Mark() {
	if d == nil {
		return
	}
	d.flag.Store(true)
}

// Take reports whether a redraw was requested and clears the request.
func (d *Dirty) Take() bool {
	if d == nil {
		return false
	}
	return d.flag.Swap(false)
}
