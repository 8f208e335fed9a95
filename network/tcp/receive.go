package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/svanichkin/mycord/codec"
	"github.com/svanichkin/mycord/logs"
	"github.com/svanichkin/mycord/ui"
	"go.uber.org/zap"
)

// Fixed authors and texts of lines the receive loop produces itself.
const (
	AuthorSystem     = "System"
	AuthorDisconnect = "DISCONNECT"

	ServerGoneText = "Server has disconnected"
	ReadFailText   = "Could not read from server"
)

// Receiver reads frames from the session, drops immediate duplicates and
// hands classified lines to a sink.
type Receiver struct {
	sess   *Session
	sink   ui.Sink
	layout string

	// last is the previous accepted frame. The server has been seen to
	// deliver some frames twice back to back.
	last    [codec.MessageSize]byte
	hasLast bool
}

// NewReceiver builds a receive loop; layout formats frame timestamps.
func NewReceiver(sess *Session, sink ui.Sink, layout string) *Receiver {
	if layout == "" {
		layout = ui.ClockLayout
	}
	return &Receiver{sess: sess, sink: sink, layout: layout}
}

// Run reads until the session ends. It returns nil for an orderly end (local
// stop, server close, DISCONNECT) and an error for a broken stream. Either
// way the session is stopped on return.
func (rc *Receiver) Run(ctx context.Context) error {
	defer rc.sess.Stop()
	buf := make([]byte, codec.MessageSize)
	for {
		if ctx.Err() != nil || !rc.sess.Running() {
			return nil
		}
		n, err := ReadExact(rc.sess.Conn(), buf)
		if !rc.sess.Running() {
			return nil
		}
		if err != nil {
			return rc.fail(n, err)
		}
		rc.sess.stats.recv(n)
		if rc.duplicate(buf) {
			logs.LogV("[recv] duplicate frame dropped")
			continue
		}
		if done := rc.dispatch(buf); done {
			return nil
		}
	}
}

func (rc *Receiver) fail(n int, err error) error {
	if errors.Is(err, io.EOF) {
		if n == 0 {
			rc.sink.Deliver(rc.systemLine(ServerGoneText))
			rc.sess.End(ServerGoneText)
			return nil
		}
		rc.sink.Deliver(ui.ErrorLine(ReadFailText))
		rc.sess.End(ReadFailText)
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, codec.MessageSize)
	}
	rc.sink.Deliver(ui.ErrorLine(ReadFailText))
	rc.sess.End(ReadFailText)
	return fmt.Errorf("%w: read: %v", ErrTransport, err)
}

func (rc *Receiver) duplicate(buf []byte) bool {
	var cur [codec.MessageSize]byte
	copy(cur[:], buf)
	if rc.hasLast && cur == rc.last {
		return true
	}
	rc.last, rc.hasLast = cur, true
	return false
}

// dispatch classifies one frame and reports whether the session is over.
func (rc *Receiver) dispatch(buf []byte) bool {
	m, err := codec.Decode(buf)
	if err != nil {
		// buf is always one full frame
		logs.LogV("[recv] decode", zap.Error(err))
		return false
	}
	line := Classify(m, rc.layout)
	logs.LogV("[recv] frame", zap.Stringer("kind", m.Kind), zap.String("from", m.Username.String()))
	rc.sink.Deliver(line)
	if m.Kind == codec.KindDisconnect {
		rc.sess.MarkServerDisconnect(line.Body)
		return true
	}
	return false
}

// Classify turns a received frame into a display line.
func Classify(m codec.Message, layout string) ui.DisplayLine {
	line := ui.DisplayLine{
		Time: time.Unix(int64(m.Timestamp), 0).Format(layout),
		Body: m.Body.String(),
	}
	switch m.Kind {
	case codec.KindMessageRecv:
		line.Author, line.Kind = m.Username.String(), ui.LineMessage
	case codec.KindSystem:
		line.Author, line.Kind = AuthorSystem, ui.LineSystem
	case codec.KindDisconnect:
		line.Author, line.Kind = AuthorDisconnect, ui.LineDisconnect
	default:
		line.Author, line.Kind = AuthorSystem, ui.LineOther
	}
	return line
}

func (rc *Receiver) systemLine(body string) ui.DisplayLine {
	return ui.DisplayLine{
		Time:   time.Now().Format(rc.layout),
		Author: AuthorSystem,
		Body:   body,
		Kind:   ui.LineSystem,
	}
}
