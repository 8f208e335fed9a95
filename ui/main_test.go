package ui

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeOutbox records sent text and implements Lifecycle.
type fakeOutbox struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
	running atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func newFakeOutbox() *fakeOutbox {
	o := &fakeOutbox{done: make(chan struct{})}
	o.running.Store(true)
	return o
}

func (o *fakeOutbox) Running() bool         { return o.running.Load() }
func (o *fakeOutbox) Done() <-chan struct{} { return o.done }

func (o *fakeOutbox) Stop() {
	o.once.Do(func() {
		o.running.Store(false)
		close(o.done)
	})
}

func (o *fakeOutbox) SendText(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sendErr != nil {
		return o.sendErr
	}
	o.sent = append(o.sent, text)
	return nil
}

func (o *fakeOutbox) Sent() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.sent...)
}

// pause in a key script makes the fake terminal report one timeout.
const pause = -1

// fakeTerm replays a key script and stops the session once it runs dry.
type fakeTerm struct {
	mu      sync.Mutex
	keys    []int
	out     []byte
	cols    int
	rows    int
	readErr error
	onDrain func()
}

func (f *fakeTerm) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, p...)
	return len(p), nil
}

func (f *fakeTerm) PollByte(time.Duration) (byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.keys) == 0 {
		if f.readErr != nil {
			return 0, false, f.readErr
		}
		if f.onDrain != nil {
			f.onDrain()
			f.onDrain = nil
		}
		return 0, false, nil
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	if k == pause {
		return 0, false, nil
	}
	return byte(k), true, nil
}

func (f *fakeTerm) Size() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cols == 0 {
		return 0, 0, errors.New("no tty")
	}
	return f.cols, f.rows, nil
}

func (f *fakeTerm) Output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.out)
}

func keys(parts ...any) []int {
	var out []int
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			for i := 0; i < len(v); i++ {
				out = append(out, int(v[i]))
			}
		case int:
			out = append(out, v)
		}
	}
	return out
}

func plainRenderer() *lipgloss.Renderer {
	return lipgloss.NewRenderer(io.Discard)
}
