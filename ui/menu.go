package ui

import "sync/atomic"

// MenuGate tracks whether the start menu is on screen. Only the input loop
// dismisses it; the announcer reads it.
type MenuGate struct {
	active atomic.Bool
}

func NewMenuGate(show bool) *MenuGate {
	g := &MenuGate{}
	g.active.Store(show)
	return g
}

// Active is false for a nil gate.
func (g *MenuGate) Active() bool {
	return g != nil && g.active.Load()
}

func (g *MenuGate) Dismiss() {
	if g != nil {
		g.active.Store(false)
	}
}

// menuAction is what a key does on the start menu.
type menuAction int

const (
	menuNone menuAction = iota
	menuToggle
	menuProceed
	menuQuit
)

func menuKey(c byte) menuAction {
	switch c {
	case keyEscape:
		return menuToggle
	case '\r', '\n':
		return menuProceed
	case 'q', 'Q':
		return menuQuit
	}
	return menuNone
}
