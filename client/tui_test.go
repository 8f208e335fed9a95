package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svanichkin/mycord/codec"
)

// scriptTerm replays typed text, then reports EOF once the session is over
// or the script is exhausted and closed.
type scriptTerm struct {
	mu     sync.Mutex
	keys   chan byte
	screen strings.Builder
	closed bool
}

func newScriptTerm() *scriptTerm {
	return &scriptTerm{keys: make(chan byte, 256)}
}

func (s *scriptTerm) Type(text string) {
	for i := 0; i < len(text); i++ {
		s.keys <- text[i]
	}
}

func (s *scriptTerm) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Write(p)
}

func (s *scriptTerm) PollByte(timeout time.Duration) (byte, bool, error) {
	select {
	case c, ok := <-s.keys:
		if !ok {
			return 0, false, io.EOF
		}
		return c, true, nil
	case <-time.After(timeout):
		return 0, false, nil
	}
}

func (s *scriptTerm) Size() (int, int, error) { return 80, 24, nil }

func (s *scriptTerm) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptTerm) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *scriptTerm) Screen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.String()
}

func TestTUISession(t *testing.T) {
	r := newRig(t, true)
	term := newScriptTerm()
	r.c.OpenTerminal = func() (Terminal, error) { return term, nil }
	r.start(context.Background())
	readFrame(t, r.server)

	send(t, r.server, codec.KindMessageRecv, "cortana", "chief?")
	term.Type("hi\r!gravemind\r")
	assert.Equal(t, "hi", readFrame(t, r.server).Body.String())

	term.Type("!disconnect\r")
	assert.Equal(t, codec.KindLogout, readFrame(t, r.server).Kind)
	require.NoError(t, r.wait(t))

	assert.True(t, term.Closed())
	screen := term.Screen()
	assert.Contains(t, screen, "Connected to server")
	assert.Contains(t, screen, "cortana")
	assert.Contains(t, r.out.String(), "Starting TUI mode...")
	assert.Contains(t, r.out.String(), "Spartans never die...")
	assert.NotContains(t, r.out.String(), "Disconnected:")
}

func TestTUIServerGoneReportsReason(t *testing.T) {
	r := newRig(t, true)
	term := newScriptTerm()
	r.c.OpenTerminal = func() (Terminal, error) { return term, nil }
	r.start(context.Background())
	readFrame(t, r.server)

	send(t, r.server, codec.KindDisconnect, "", "Kicked")
	require.NoError(t, r.wait(t))
	assert.True(t, term.Closed())
	assert.Contains(t, r.out.String(), "Disconnected: Kicked")
}

func TestTUITerminalUnavailable(t *testing.T) {
	r := newRig(t, true)
	r.c.OpenTerminal = func() (Terminal, error) { return nil, errors.New("not a tty") }
	r.start(context.Background())
	readFrame(t, r.server)

	assert.Equal(t, codec.KindLogout, readFrame(t, r.server).Kind)
	require.NoError(t, r.wait(t))
	assert.Contains(t, r.errOut.String(), "not a tty")
}
