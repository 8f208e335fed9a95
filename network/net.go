package network

import (
	"fmt"
	"strings"
)

// Default server endpoint.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8080
)

// PrettyAddr formats host and port, adding brackets around IPv6 addresses so
// the result stays parseable as host:port.
func PrettyAddr(host string, port int) string {
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		return fmt.Sprintf("[%s]:%d", host, port)
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Scheme selects how the byte stream to the server is carried.
type Scheme string

const (
	SchemeTCP Scheme = "tcp"
	SchemeWS  Scheme = "ws"
	SchemeWSS Scheme = "wss"
)

// Target is a resolved server endpoint.
type Target struct {
	Scheme Scheme
	Host   string
	Port   int
	// Path is the request path for WebSocket targets.
	Path string
}

func (t Target) String() string {
	if t.Scheme == SchemeWS || t.Scheme == SchemeWSS {
		return t.URL()
	}
	return PrettyAddr(t.Host, t.Port)
}

// URL is the WebSocket URL of the target.
func (t Target) URL() string {
	path := t.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s://%s%s", t.Scheme, PrettyAddr(t.Host, t.Port), path)
}
