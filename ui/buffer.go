package ui

import "sync"

// DefaultCapacity is the number of lines kept for scrollback.
const DefaultCapacity = 600

// DisplayBuffer is the bounded, lock-protected log behind the message view.
// scroll counts lines back from the newest; 0 keeps the view pinned to the
// bottom.
type DisplayBuffer struct {
	mu       sync.Mutex
	lines    []DisplayLine
	capacity int
	scroll   int
	dirty    *Dirty
}

// View is a snapshot of the visible part of the buffer.
type View struct {
	Lines  []DisplayLine
	Scroll int
	Total  int
}

// NewDisplayBuffer creates a buffer holding at most capacity lines. dirty may
// be nil.
func NewDisplayBuffer(capacity int, dirty *Dirty) *DisplayBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &DisplayBuffer{
		lines:    make([]DisplayLine, 0, capacity),
		capacity: capacity,
		dirty:    dirty,
	}
}

// Append adds a line, evicting the oldest past capacity. When the user has
// scrolled away from the bottom the offset grows by one so the same lines
// stay in view.
func (b *DisplayBuffer) Append(line DisplayLine) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.capacity {
		copy(b.lines, b.lines[1:])
		b.lines[len(b.lines)-1] = DisplayLine{}
		b.lines = b.lines[:len(b.lines)-1]
	}
	if b.scroll > 0 {
		b.scroll = min(b.scroll+1, len(b.lines))
	}
	b.mu.Unlock()
	b.dirty.Mark()
}

// Deliver implements Sink.
func (b *DisplayBuffer) Deliver(line DisplayLine) {
	b.Append(line)
}

// Scroll moves the view by delta lines (positive goes back in time) and
// returns the new offset, clamped to [0, Len].
func (b *DisplayBuffer) Scroll(delta int) int {
	b.mu.Lock()
	s := b.scroll + delta
	if s < 0 {
		s = 0
	}
	if s > len(b.lines) {
		s = len(b.lines)
	}
	changed := s != b.scroll
	b.scroll = s
	b.mu.Unlock()
	if changed {
		b.dirty.Mark()
	}
	return s
}

// Offset returns the current scroll offset.
func (b *DisplayBuffer) Offset() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scroll
}

// Len returns the number of buffered lines.
func (b *DisplayBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Window copies at most height lines ending scroll lines before the newest:
// [len-height-scroll, len-scroll) clamped to [0, len).
func (b *DisplayBuffer) Window(height int) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := len(b.lines)
	if height < 0 {
		height = 0
	}
	start := clamp(total-height-b.scroll, 0, total)
	end := clamp(total-b.scroll, 0, total)
	out := make([]DisplayLine, end-start)
	copy(out, b.lines[start:end])
	return View{Lines: out, Scroll: b.scroll, Total: total}
}

// Snapshot copies every buffered line, oldest first.
func (b *DisplayBuffer) Snapshot() []DisplayLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]DisplayLine, len(b.lines))
	copy(out, b.lines)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
