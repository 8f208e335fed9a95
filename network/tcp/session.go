package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/svanichkin/mycord/codec"
	"github.com/svanichkin/mycord/logs"
	"go.uber.org/zap"
)

var (
	// ErrTransport wraps any failure of the underlying stream.
	ErrTransport = errors.New("transport error")
	// ErrShortRead means the server closed the stream in the middle of a frame.
	ErrShortRead = errors.New("short read")
)

// LogoutBody accompanies the LOGOUT frame.
const LogoutBody = "User has disconnected"

// ReadExact fills buf from r. A short count is only ever returned together
// with io.EOF; any other failure is returned as is.
func ReadExact(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, io.EOF
	}
	return n, err
}

// WriteAll writes every byte of b. A write that makes no progress without
// reporting an error is io.ErrShortWrite.
func WriteAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n <= 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}

// Session is one connection to the chat server plus the lifecycle shared by
// every loop. running only goes from true to false; Done is closed when it
// does.
type Session struct {
	conn     net.Conn
	username string

	// wmu keeps frames from interleaving when several goroutines send.
	wmu sync.Mutex

	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once

	serverDisconnect atomic.Bool
	reasonMu         sync.Mutex
	reason           string

	closeOnce sync.Once
	closeErr  error

	stats Stats

	now func() time.Time
}

// Stats counts frames and payload bytes in each direction.
type Stats struct {
	FramesSent, FramesRecv atomic.Uint64
	BytesSent, BytesRecv   atomic.Uint64
}

func (st *Stats) sent(n int) {
	st.FramesSent.Add(1)
	st.BytesSent.Add(uint64(n))
}

func (st *Stats) recv(n int) {
	st.FramesRecv.Add(1)
	st.BytesRecv.Add(uint64(n))
}

// Fields renders the counters for a log record.
func (st *Stats) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint64("frames_sent", st.FramesSent.Load()),
		zap.Uint64("frames_recv", st.FramesRecv.Load()),
		zap.Uint64("bytes_sent", st.BytesSent.Load()),
		zap.Uint64("bytes_recv", st.BytesRecv.Load()),
	}
}

func NewSession(conn net.Conn, username string) *Session {
	s := &Session{
		conn:     conn,
		username: username,
		done:     make(chan struct{}),
		now:      time.Now,
	}
	s.running.Store(true)
	return s
}

func (s *Session) Username() string { return s.username }

// Stats is the live traffic counters of the session.
func (s *Session) Stats() *Stats { return &s.stats }

// Conn is the stream frames are read from.
func (s *Session) Conn() net.Conn { return s.conn }

func (s *Session) Running() bool { return s.running.Load() }

func (s *Session) Done() <-chan struct{} { return s.done }

// Stop ends the session. It is safe to call from any goroutine, any number of
// times.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		close(s.done)
	})
}

// End stops the session and records why, keeping the first reason given.
func (s *Session) End(reason string) {
	s.reasonMu.Lock()
	if s.reason == "" {
		s.reason = reason
	}
	s.reasonMu.Unlock()
	s.Stop()
}

// MarkServerDisconnect records that the server told us to leave. No LOGOUT
// follows.
func (s *Session) MarkServerDisconnect(reason string) {
	s.serverDisconnect.Store(true)
	s.End(reason)
}

func (s *Session) ServerDisconnected() bool { return s.serverDisconnect.Load() }

// EndReason is the recorded reason the session ended, if any.
func (s *Session) EndReason() string {
	s.reasonMu.Lock()
	defer s.reasonMu.Unlock()
	return s.reason
}

// Send encodes and writes one frame stamped with the current time.
func (s *Session) Send(kind codec.Kind, body string) error {
	m := codec.Encode(kind, uint32(s.now().Unix()), s.username, body)
	frame := m.Bytes()
	s.wmu.Lock()
	err := WriteAll(s.conn, frame)
	s.wmu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: send %s: %v", ErrTransport, kind, err)
	}
	s.stats.sent(len(frame))
	logs.LogV("[tcp] sent", zap.Stringer("kind", kind), zap.Int("len", len(body)))
	return nil
}

// SendText sends a chat message.
func (s *Session) SendText(text string) error {
	return s.Send(codec.KindMessageSend, text)
}

// Login announces the user. It must precede the receive loop.
func (s *Session) Login() error {
	return s.Send(codec.KindLogin, "")
}

// Logout says goodbye, best effort. It is skipped when the server already
// disconnected us.
func (s *Session) Logout() error {
	if s.ServerDisconnected() {
		return nil
	}
	return s.Send(codec.KindLogout, LogoutBody)
}

// Shutdown shuts the socket down in both directions, which unblocks a pending
// read, and closes it.
func (s *Session) Shutdown() error {
	s.closeOnce.Do(func() {
		if err := shutdownBoth(s.conn); err != nil {
			logs.LogV("[tcp] shutdown", zap.Error(err))
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

func closeHalves(c net.Conn) error {
	hc, ok := c.(halfCloser)
	if !ok {
		return nil
	}
	return errors.Join(hc.CloseRead(), hc.CloseWrite())
}
