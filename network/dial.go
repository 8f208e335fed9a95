package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/svanichkin/mycord/logs"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// DefaultDialTimeout bounds connection setup when the caller sets none.
const DefaultDialTimeout = 10 * time.Second

var ErrUnsupportedProxy = errors.New("unsupported proxy scheme")

// Dialer opens the stream to the chat server. The zero value dials plain TCP
// directly.
type Dialer struct {
	// Proxy is an optional socks5:// URL every connection goes through.
	Proxy   string
	Timeout time.Duration
}

func (d *Dialer) timeout() time.Duration {
	if d == nil || d.Timeout <= 0 {
		return DefaultDialTimeout
	}
	return d.Timeout
}

// contextDialer returns the dialer for raw TCP, honoring the proxy.
func (d *Dialer) contextDialer() (proxy.ContextDialer, error) {
	base := &net.Dialer{Timeout: d.timeout(), KeepAlive: 15 * time.Second}
	if d == nil || d.Proxy == "" {
		return base, nil
	}
	u, err := url.Parse(d.Proxy)
	if err != nil {
		return nil, fmt.Errorf("proxy url: %w", err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, u.Scheme)
	}
	pd, err := proxy.FromURL(u, base)
	if err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}
	cd, ok := pd.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("%w: %q cannot dial with a context", ErrUnsupportedProxy, u.Scheme)
	}
	return cd, nil
}

// Dial connects to t and returns a byte stream carrying frames unchanged.
func (d *Dialer) Dial(ctx context.Context, t Target) (net.Conn, error) {
	cd, err := d.contextDialer()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout())
	defer cancel()

	switch t.Scheme {
	case SchemeWS, SchemeWSS:
		return dialWS(ctx, cd, t)
	case SchemeTCP, "":
		logs.LogV("[net] dialing", zap.String("addr", PrettyAddr(t.Host, t.Port)))
		conn, err := cd.DialContext(ctx, "tcp", PrettyAddr(t.Host, t.Port))
		if err != nil {
			return nil, err
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unknown scheme %q", t.Scheme)
}

// dialWS opens a WebSocket and exposes it as a net.Conn. Every write is one
// binary message; reads see the concatenated message payloads.
func dialWS(ctx context.Context, cd proxy.ContextDialer, t Target) (net.Conn, error) {
	client := &http.Client{Transport: &http.Transport{
		DialContext: cd.DialContext,
		Proxy:       nil,
	}}
	logs.LogV("[net] websocket dialing", zap.String("url", t.URL()))
	c, resp, err := websocket.Dial(ctx, t.URL(), &websocket.DialOptions{HTTPClient: client})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary), nil
}
