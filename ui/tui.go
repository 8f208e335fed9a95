package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/svanichkin/mycord/logs"
	"go.uber.org/zap"
)

const (
	// InputPoll bounds how long the loop waits for a key before servicing
	// the dirty flag again.
	InputPoll = 75 * time.Millisecond
	// escapePoll is the wait for the rest of an escape sequence.
	escapePoll = 10 * time.Millisecond
	// PageStep is how far PgUp/PgDn scroll.
	PageStep = 5
)

// Terminal is the controlling terminal as the input loop sees it.
type Terminal interface {
	io.Writer
	// PollByte waits up to timeout for one byte; ok is false on timeout.
	PollByte(timeout time.Duration) (c byte, ok bool, err error)
	Size() (cols, rows int, err error)
}

// Outbox is the session as the input loop sees it.
type Outbox interface {
	Lifecycle
	SendText(text string) error
}

// TUIOptions wires the input loop to the shared state.
type TUIOptions struct {
	Term     Terminal
	Outbox   Outbox
	Buffer   *DisplayBuffer
	Dirty    *Dirty
	Themes   *ThemeSwitch
	Menu     *MenuGate
	Painter  *Painter
	Commands *Commands
}

// TUI is the foreground input loop. It owns the edit state and is the only
// caller of Dirty.Take.
type TUI struct {
	TUIOptions
	edit       *EditState
	cols, rows int
}

func NewTUI(opts TUIOptions) *TUI {
	return &TUI{TUIOptions: opts, edit: NewEditState()}
}

// Edit exposes the edit state for inspection.
func (t *TUI) Edit() *EditState { return t.edit }

// Run reads keys until the session stops, ctx is cancelled or the user quits
// from the start menu. A terminal read failure stops the session.
func (t *TUI) Run(ctx context.Context) error {
	t.Dirty.Mark()
	for t.Outbox.Running() {
		if ctx.Err() != nil {
			return nil
		}
		t.checkResize()
		if t.Dirty.Take() {
			t.draw()
		}
		c, ok, err := t.Term.PollByte(InputPoll)
		if err != nil {
			t.Outbox.Stop()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read terminal: %w", err)
		}
		if !ok {
			continue
		}
		if t.Menu.Active() {
			t.menuKey(c)
			continue
		}
		t.key(c)
	}
	return nil
}

func (t *TUI) checkResize() {
	cols, rows, err := t.Term.Size()
	if err != nil {
		return
	}
	if cols != t.cols || rows != t.rows {
		t.cols, t.rows = cols, rows
		t.Dirty.Mark()
	}
}

func (t *TUI) geometry() (int, int) {
	cols, rows, err := t.Term.Size()
	if err != nil {
		return Geometry(0, 0)
	}
	return Geometry(cols, rows)
}

func (t *TUI) draw() {
	cols, rows := t.geometry()
	var frame string
	if t.Menu.Active() {
		frame = t.Painter.Menu(cols, rows)
	} else {
		view := t.Buffer.Window(MessageHeight(rows))
		frame = t.Painter.Frame(cols, rows, view, t.edit.Text())
	}
	if _, err := io.WriteString(t.Term, frame); err != nil {
		logs.LogV("[tui] draw failed", zap.Error(err))
	}
}

func (t *TUI) menuKey(c byte) {
	action := menuKey(c)
	if action == menuToggle && t.escapeFollows() {
		// arrow keys and friends are not a lone ESC
		return
	}
	switch action {
	case menuToggle:
		t.Themes.Toggle()
	case menuProceed:
		t.Menu.Dismiss()
		t.Boot()
	case menuQuit:
		t.Outbox.Stop()
	}
}

// Boot appends the active theme's boot sequence to the view. It runs when the
// start menu is dismissed, or up front when there is no menu.
func (t *TUI) Boot() {
	for _, l := range t.Themes.Active().BootLines() {
		t.Buffer.Append(l)
	}
	t.Buffer.Append(SystemLine("SYSTEM", "Connected to server"))
	t.Buffer.Append(SystemLine("CORTANA", "Type '!help' for available commands"))
}

// escapeFollows consumes the rest of an escape sequence, if any.
func (t *TUI) escapeFollows() bool {
	c, ok, err := t.Term.PollByte(escapePoll)
	if err != nil || !ok {
		return false
	}
	if c == '[' || c == 'O' {
		t.Term.PollByte(escapePoll)
	}
	return true
}

func (t *TUI) key(c byte) {
	switch {
	case c == '\r' || c == '\n':
		t.submit()
	case c == 127 || c == 8:
		if t.edit.Backspace() {
			t.Dirty.Mark()
		}
	case c == keyEscape:
		t.escape()
	case c >= 32 && c <= 126:
		if t.edit.Insert(c) {
			t.Dirty.Mark()
		}
	}
}

func (t *TUI) submit() {
	text := t.edit.Text()
	if text == "" {
		return
	}
	defer t.Dirty.Mark()
	if t.Commands.Dispatch(text) {
		t.edit.Clear()
		return
	}
	if err := ValidateOutgoing(text); err != nil {
		t.Buffer.Append(ErrorLine(err.Error()))
		t.edit.Clear()
		return
	}
	if err := t.Outbox.SendText(text); err != nil {
		logs.LogV("[tui] send failed", zap.Error(err))
		t.Buffer.Append(ErrorLine("Write error - connection lost"))
		t.edit.Clear()
		t.Outbox.Stop()
		return
	}
	t.edit.PushHistory(text)
	t.edit.Clear()
}

// maxEscapeLen caps how many parameter bytes a CSI sequence may carry.
const maxEscapeLen = 16

// escape decodes ESC [ A/B (arrows) and ESC [ 5~/6~ (paging). Anything else
// is read to its final byte and dropped so it never reaches the edit buffer.
func (t *TUI) escape() {
	c, ok, err := t.Term.PollByte(escapePoll)
	if err != nil || !ok {
		return
	}
	switch c {
	case 'O':
		t.Term.PollByte(escapePoll)
		return
	case '[':
	default:
		return
	}
	var params []byte
	for len(params) < maxEscapeLen {
		b, ok, err := t.Term.PollByte(escapePoll)
		if err != nil || !ok {
			return
		}
		if b < 0x40 || b > 0x7e {
			params = append(params, b)
			continue
		}
		t.csi(string(params), b)
		return
	}
}

func (t *TUI) csi(params string, final byte) {
	switch {
	case final == 'A' && params == "":
		t.arrow(true)
	case final == 'B' && params == "":
		t.arrow(false)
	case final == '~' && params == "5":
		t.Buffer.Scroll(PageStep)
	case final == '~' && params == "6":
		t.Buffer.Scroll(-PageStep)
	}
}

// arrow scrolls the view while the input is empty and walks history
// otherwise.
func (t *TUI) arrow(up bool) {
	if t.edit.Empty() {
		if up {
			t.Buffer.Scroll(1)
		} else {
			t.Buffer.Scroll(-1)
		}
		return
	}
	var changed bool
	if up {
		changed = t.edit.HistoryPrev()
	} else {
		changed = t.edit.HistoryNext()
	}
	if changed {
		t.Dirty.Mark()
	}
}
