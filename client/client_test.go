package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/svanichkin/mycord/codec"
	"github.com/svanichkin/mycord/conf"
	"github.com/svanichkin/mycord/network"
	"github.com/svanichkin/mycord/network/tcp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func options(tui bool) *conf.Options {
	cfg := conf.Defaults()
	cfg.TUI = tui
	cfg.StartMenu = false
	cfg.Announce = conf.Announce{Min: time.Hour, Max: time.Hour}
	return &conf.Options{
		Config:   cfg,
		Target:   network.Target{Scheme: network.SchemeTCP, Host: network.DefaultHost, Port: network.DefaultPort},
		Username: "chief",
	}
}

type rig struct {
	c      *Client
	server net.Conn
	stdin  *io.PipeWriter
	out    *syncBuffer
	errOut *syncBuffer
	done   chan error
}

func newRig(t *testing.T, tui bool) *rig {
	t.Helper()
	client, server := net.Pipe()
	inR, inW := io.Pipe()
	r := &rig{server: server, stdin: inW, out: &syncBuffer{}, errOut: &syncBuffer{}, done: make(chan error, 1)}
	r.c = &Client{
		Options: options(tui),
		Stdin:   inR,
		Stdout:  r.out,
		Stderr:  r.errOut,
		Dial:    func(context.Context, network.Target) (net.Conn, error) { return client, nil },
	}
	t.Cleanup(func() {
		server.Close()
		inW.Close()
	})
	return r
}

func (r *rig) start(ctx context.Context) {
	go func() { r.done <- r.c.Run(ctx) }()
}

func (r *rig) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("client did not finish")
		return nil
	}
}

func readFrame(t *testing.T, c net.Conn) codec.Message {
	t.Helper()
	buf := make([]byte, codec.MessageSize)
	_, err := io.ReadFull(c, buf)
	require.NoError(t, err)
	m, err := codec.Decode(buf)
	require.NoError(t, err)
	return m
}

func send(t *testing.T, c net.Conn, kind codec.Kind, user, body string) {
	t.Helper()
	_, err := c.Write(codec.Encode(kind, 1700000000, user, body).Bytes())
	require.NoError(t, err)
}

func TestLineModeSession(t *testing.T) {
	r := newRig(t, false)
	r.start(context.Background())

	login := readFrame(t, r.server)
	assert.Equal(t, codec.KindLogin, login.Kind)
	assert.Equal(t, "chief", login.Username.String())

	send(t, r.server, codec.KindMessageRecv, "cortana", "wake up @chief")
	_, err := io.WriteString(r.stdin, "hello\n")
	require.NoError(t, err)
	msg := readFrame(t, r.server)
	assert.Equal(t, codec.KindMessageSend, msg.Kind)
	assert.Equal(t, "hello", msg.Body.String())
	assert.Equal(t, "chief", msg.Username.String())

	_, err = io.WriteString(r.stdin, "\n!help\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return bytes.Contains([]byte(r.errOut.String()), []byte("message too short")) },
		2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return bytes.Contains([]byte(r.out.String()), []byte("Commands: !help")) },
		2*time.Second, 10*time.Millisecond)

	send(t, r.server, codec.KindDisconnect, "", "Server shutting down")
	require.NoError(t, r.wait(t))

	// no LOGOUT after a server DISCONNECT: the stream just closes
	_, err = r.server.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	out := r.out.String()
	assert.Contains(t, out, "Connecting to 127.0.0.1:8080...")
	assert.Contains(t, out, "User: chief")
	assert.Contains(t, out, "Connected to 127.0.0.1:8080!")
	assert.Contains(t, out, "cortana: wake up \a@chief")
	assert.Contains(t, out, "[DISCONNECT] Server shutting down")
	assert.Contains(t, out, "Spartans never die...")
}

func TestLineModeStdinEOFLogsOut(t *testing.T) {
	r := newRig(t, false)
	r.start(context.Background())
	readFrame(t, r.server)

	require.NoError(t, r.stdin.Close())
	logout := readFrame(t, r.server)
	assert.Equal(t, codec.KindLogout, logout.Kind)
	assert.Equal(t, tcp.LogoutBody, logout.Body.String())
	require.NoError(t, r.wait(t))
}

func TestCancelLogsOut(t *testing.T) {
	r := newRig(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	r.start(ctx)
	readFrame(t, r.server)

	cancel()
	assert.Equal(t, codec.KindLogout, readFrame(t, r.server).Kind)
	require.NoError(t, r.wait(t))
}

func TestDialFailure(t *testing.T) {
	r := newRig(t, false)
	boom := errors.New("refused")
	r.c.Dial = func(context.Context, network.Target) (net.Conn, error) { return nil, boom }
	r.start(context.Background())
	err := r.wait(t)
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, r.out.String(), "Connected to")
}

func TestLoginFailure(t *testing.T) {
	r := newRig(t, false)
	r.server.Close()
	r.start(context.Background())
	err := r.wait(t)
	assert.ErrorIs(t, err, tcp.ErrTransport)
}
