package device

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by Open when stdin or stdout is redirected.
var ErrNotTerminal = errors.New("stdin and stdout must be a terminal")

// Terminal is the interactive console: stdin in raw mode, stdout switched to
// the alternate screen. It satisfies ui.Terminal.
type Terminal struct {
	in, out *os.File
	keys    *keyReader
	restore func()
	once    sync.Once
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// SupportsSyncOutput reports whether frames may be wrapped in the
// synchronized output mode (DEC 2026).
func SupportsSyncOutput() bool {
	return supportsSyncOutput
}

// Open switches the console into raw mode and the alternate screen. Close
// must be called to undo both, also on error paths.
func Open() (*Terminal, error) {
	if !IsInteractive() {
		return nil, ErrNotTerminal
	}
	t := &Terminal{in: os.Stdin, out: os.Stdout}
	restore, err := makeRaw(int(t.in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	t.restore = restore
	t.keys = newKeyReader(t.in)
	enterAltScreen(t.out)
	return t, nil
}

func (t *Terminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// PollByte waits up to timeout for one input byte.
func (t *Terminal) PollByte(timeout time.Duration) (byte, bool, error) {
	return t.keys.next(timeout)
}

// Size returns the current size in cells.
func (t *Terminal) Size() (cols, rows int, err error) {
	return term.GetSize(int(t.out.Fd()))
}

// Close leaves the alternate screen and restores the saved mode. It is safe
// to call more than once.
func (t *Terminal) Close() error {
	t.once.Do(func() {
		exitAltScreen(t.out)
		if t.restore != nil {
			t.restore()
		}
	})
	return nil
}

func enterAltScreen(w *os.File) {
	// alt screen, hide cursor, no autowrap, clear scrollback, home
	fmt.Fprint(w, "\x1b[?1049h\x1b[?25l\x1b[?7l\x1b[3J\x1b[H")
}

func exitAltScreen(w *os.File) {
	fmt.Fprint(w, "\x1b[0m\x1b[?7h\x1b[?25h\x1b[?1049l")
}
