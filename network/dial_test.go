package network

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// net/http keeps idle connection goroutines around after the ws tests
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func TestPrettyAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", PrettyAddr("127.0.0.1", 8080))
	assert.Equal(t, "[::1]:9000", PrettyAddr("::1", 9000))
	assert.Equal(t, "chat.example.org:80", PrettyAddr("chat.example.org", 80))
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "[::1]:8080", Target{Host: "::1", Port: 8080}.String())
	assert.Equal(t, "ws://host:81/", Target{Scheme: SchemeWS, Host: "host", Port: 81}.String())
	assert.Equal(t, "wss://host:443/chat", Target{Scheme: SchemeWSS, Host: "host", Port: 443, Path: "/chat"}.URL())
}

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, p, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return host, port
}

func TestDialTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		b, _ := io.ReadAll(c)
		got <- string(b)
	}()

	host, port := splitHostPort(t, ln.Addr().String())
	var d Dialer
	conn, err := d.Dial(context.Background(), Target{Host: host, Port: port})
	require.NoError(t, err)
	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	select {
	case s := <-got:
		assert.Equal(t, "ping", s)
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the bytes")
	}
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port := splitHostPort(t, ln.Addr().String())
	ln.Close()

	d := Dialer{Timeout: time.Second}
	_, err = d.Dial(context.Background(), Target{Host: host, Port: port})
	assert.Error(t, err)
}

func TestDialRejectsUnknownProxy(t *testing.T) {
	d := Dialer{Proxy: "http://127.0.0.1:3128"}
	_, err := d.Dial(context.Background(), Target{Host: "127.0.0.1", Port: 1})
	assert.ErrorIs(t, err, ErrUnsupportedProxy)
}

func TestDialWebSocketCarriesBinaryStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		typ, b, err := c.Read(r.Context())
		if err != nil {
			return
		}
		if typ != websocket.MessageBinary {
			c.Close(websocket.StatusUnsupportedData, "binary only")
			return
		}
		_ = c.Write(r.Context(), websocket.MessageBinary, append([]byte("echo:"), b...))
		c.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	host, port := splitHostPort(t, strings.TrimPrefix(srv.URL, "http://"))
	var d Dialer
	conn, err := d.Dial(context.Background(), Target{Scheme: SchemeWS, Host: host, Port: port, Path: "/"})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("frame"))
	require.NoError(t, err)
	buf := make([]byte, len("echo:frame"))
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "echo:frame", string(buf))
}
