//go:build windows

package device

import (
	"io"
	"os"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

const utf8CodePage = 65001

// Windows consoles ignore DEC 2026.
const supportsSyncOutput = false

func init() {
	enableVirtualTerminalProcessing()
	_ = windows.SetConsoleOutputCP(utf8CodePage)
	_ = windows.SetConsoleCP(utf8CodePage)
}

// enableVirtualTerminalProcessing lets stdout and stderr interpret ANSI
// sequences on consoles that support VT mode.
func enableVirtualTerminalProcessing() {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		h := windows.Handle(f.Fd())
		var mode uint32
		if err := windows.GetConsoleMode(h, &mode); err != nil {
			continue
		}
		mode |= windows.ENABLE_PROCESSED_OUTPUT | windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
		_ = windows.SetConsoleMode(h, mode)
	}
}

func makeRaw(fd int) (func(), error) {
	st, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, st) }, nil
}

// keyReader feeds a channel from a blocking reader goroutine; console
// handles cannot be polled with a timeout.
type keyReader struct {
	c   chan byte
	err error
}

func newKeyReader(f *os.File) *keyReader {
	r := &keyReader{c: make(chan byte, 64)}
	go func() {
		defer close(r.c)
		var b [1]byte
		for {
			n, err := f.Read(b[:])
			if n == 1 {
				r.c <- b[0]
			}
			if err != nil {
				r.err = err
				return
			}
		}
	}()
	return r
}

func (r *keyReader) next(timeout time.Duration) (byte, bool, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case b, ok := <-r.c:
		if !ok {
			if r.err == nil {
				return 0, false, io.EOF
			}
			return 0, false, r.err
		}
		return b, true, nil
	case <-t.C:
		return 0, false, nil
	}
}
