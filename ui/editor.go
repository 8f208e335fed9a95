package ui

import (
	"errors"

	"github.com/svanichkin/mycord/codec"
)

const (
	// MaxInputLen is the largest message the server accepts.
	MaxInputLen = codec.MaxBodyLen
	// HistoryCapacity bounds the sent-message history.
	HistoryCapacity = 64

	keyEscape = 27
)

var (
	ErrEmpty        = errors.New("message too short")
	ErrTooLong      = errors.New("message too long")
	ErrNonPrintable = errors.New("message contains non-printable ASCII")
)

// ValidateOutgoing checks that text can be sent: non-empty, at most
// MaxInputLen bytes and printable ASCII only (ESC included in the rejects).
func ValidateOutgoing(text string) error {
	if len(text) == 0 {
		return ErrEmpty
	}
	if len(text) > MaxInputLen {
		return ErrTooLong
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == keyEscape || c < 32 || c > 126 {
			return ErrNonPrintable
		}
	}
	return nil
}

// EditState is the input line plus the history of sent messages. It belongs
// to the input loop and is not safe for concurrent use.
type EditState struct {
	text    []byte
	history []string
	cursor  int
}

// NewEditState returns an empty editor.
func NewEditState() *EditState {
	return &EditState{text: make([]byte, 0, MaxInputLen)}
}

// Text returns the current input.
func (e *EditState) Text() string { return string(e.text) }

// Len returns the input length in bytes.
func (e *EditState) Len() int { return len(e.text) }

// Empty reports whether the input is empty.
func (e *EditState) Empty() bool { return len(e.text) == 0 }

// Insert appends a printable byte if capacity remains.
func (e *EditState) Insert(c byte) bool {
	if c < 32 || c > 126 || len(e.text) >= MaxInputLen {
		return false
	}
	e.text = append(e.text, c)
	return true
}

// Backspace removes the last byte.
func (e *EditState) Backspace() bool {
	if len(e.text) == 0 {
		return false
	}
	e.text = e.text[:len(e.text)-1]
	return true
}

// Clear empties the input and parks the history cursor after the newest entry.
func (e *EditState) Clear() {
	e.text = e.text[:0]
	e.cursor = len(e.history)
}

func (e *EditState) set(s string) {
	if len(s) > MaxInputLen {
		s = s[:MaxInputLen]
	}
	e.text = append(e.text[:0], s...)
}

// History returns a copy of the sent messages, oldest first.
func (e *EditState) History() []string {
	out := make([]string, len(e.history))
	copy(out, e.history)
	return out
}

// PushHistory records a sent message, collapsing a repeat of the newest entry
// and evicting the oldest past HistoryCapacity.
func (e *EditState) PushHistory(s string) {
	if s == "" {
		return
	}
	if n := len(e.history); n > 0 && e.history[n-1] == s {
		e.cursor = n
		return
	}
	e.history = append(e.history, s)
	if len(e.history) > HistoryCapacity {
		copy(e.history, e.history[1:])
		e.history = e.history[:HistoryCapacity]
	}
	e.cursor = len(e.history)
}

// HistoryPrev moves the cursor one entry back and loads it.
func (e *EditState) HistoryPrev() bool {
	if len(e.history) == 0 {
		return false
	}
	if e.cursor > 0 {
		e.cursor--
	}
	e.set(e.history[e.cursor])
	return true
}

// HistoryNext moves the cursor one entry forward; moving past the newest
// entry clears the input.
func (e *EditState) HistoryNext() bool {
	if e.cursor < len(e.history) {
		e.cursor++
	}
	if e.cursor >= len(e.history) {
		changed := len(e.text) > 0
		e.text = e.text[:0]
		return changed
	}
	e.set(e.history[e.cursor])
	return true
}
