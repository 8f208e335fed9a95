package conf

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/svanichkin/mycord/network"
)

// ParseDialTarget parses a server address. Supported forms:
//  1. Bare host or IPv4: "host"                 → (host, defPort)
//  2. Host with port: "host:1234"
//  3. Raw IPv6 without port: "fd00::1"
//  4. Bracketed IPv6 with optional port: "[fd00::1]:9999"
//  5. URL: "tcp://host:port", "ws://host:port/path", "wss://host/path"
//
// For IPv6 with a port, brackets are required.
func ParseDialTarget(raw string, defPort int) (network.Target, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return network.Target{}, fmt.Errorf("empty dial target")
	}
	if strings.Contains(s, "://") {
		return parseURLTarget(s, defPort)
	}
	t := network.Target{Scheme: network.SchemeTCP, Port: defPort}
	if strings.HasPrefix(s, "[") {
		if h, p, err := net.SplitHostPort(s); err == nil {
			pi, err := parsePort(p)
			if err != nil {
				return network.Target{}, err
			}
			t.Host, t.Port = h, pi
			return t, nil
		}
		t.Host = strings.Trim(s, "[]")
		return t, nil
	}
	if strings.Count(s, ":") == 1 {
		h, p, err := net.SplitHostPort(s)
		if err != nil {
			return network.Target{}, fmt.Errorf("bad dial target %q: %w", s, err)
		}
		pi, err := parsePort(p)
		if err != nil {
			return network.Target{}, err
		}
		t.Host, t.Port = h, pi
		return t, nil
	}
	t.Host = s
	return t, nil
}

func parseURLTarget(s string, defPort int) (network.Target, error) {
	u, err := url.Parse(s)
	if err != nil {
		return network.Target{}, fmt.Errorf("bad dial target %q: %w", s, err)
	}
	t := network.Target{Scheme: network.Scheme(strings.ToLower(u.Scheme)), Host: u.Hostname()}
	switch t.Scheme {
	case network.SchemeTCP:
		t.Port = defPort
	case network.SchemeWS:
		t.Port, t.Path = 80, u.EscapedPath()
	case network.SchemeWSS:
		t.Port, t.Path = 443, u.EscapedPath()
	default:
		return network.Target{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if t.Host == "" {
		return network.Target{}, fmt.Errorf("dial target %q has no host", s)
	}
	if p := u.Port(); p != "" {
		if t.Port, err = parsePort(p); err != nil {
			return network.Target{}, err
		}
	}
	return t, nil
}

func parsePort(p string) (int, error) {
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("bad port in dial target: %v", err)
	}
	if n <= 0 || n > 65535 {
		return 0, fmt.Errorf("port %d out of range", n)
	}
	return n, nil
}
