package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svanichkin/mycord/network"
)

func TestParseDialTarget(t *testing.T) {
	tcp := func(host string, port int) network.Target {
		return network.Target{Scheme: network.SchemeTCP, Host: host, Port: port}
	}
	tests := []struct {
		in   string
		want network.Target
	}{
		{"127.0.0.1", tcp("127.0.0.1", 8080)},
		{" chat.example.dev ", tcp("chat.example.dev", 8080)},
		{"chat.example.dev:9000", tcp("chat.example.dev", 9000)},
		{"fd00::1", tcp("fd00::1", 8080)},
		{"[fd00::1]", tcp("fd00::1", 8080)},
		{"[fd00::1]:9999", tcp("fd00::1", 9999)},
		{"tcp://10.0.0.2:7000", tcp("10.0.0.2", 7000)},
		{"tcp://10.0.0.2", tcp("10.0.0.2", 8080)},
		{"ws://bridge.local/chat", network.Target{Scheme: network.SchemeWS, Host: "bridge.local", Port: 80, Path: "/chat"}},
		{"wss://bridge.local:8443/chat", network.Target{Scheme: network.SchemeWSS, Host: "bridge.local", Port: 8443, Path: "/chat"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialTarget(tt.in, 8080)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDialTargetErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "host:port", "host:0", "host:65536", "[fd00::1]:x", "http://example.com", "ws:///path"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDialTarget(in, 8080)
			assert.Error(t, err)
		})
	}
}
