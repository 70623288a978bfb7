//go:build linux || darwin

package transport_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/transport"
)

func TestResolve(t *testing.T) {
	for _, tc := range [...]struct {
		name  string
		hints transport.Hints
		want  string
		kind  api.TransportKind
	}{
		{
			name:  "passive wildcard",
			hints: transport.Hints{Port: "9999", SockType: unix.SOCK_STREAM, Passive: true},
			want:  "0.0.0.0:9999",
		},
		{
			name:  "active loopback",
			hints: transport.Hints{Port: "9999", SockType: unix.SOCK_DGRAM},
			want:  "127.0.0.1:9999",
			kind:  api.TransportUDP,
		},
		{
			name:  "literal",
			hints: transport.Hints{Host: "127.0.0.1", Port: "80", SockType: unix.SOCK_STREAM},
			want:  "127.0.0.1:80",
		},
		{
			name:  "ipv6 literal",
			hints: transport.Hints{Host: "::1", Port: "80", Family: unix.AF_INET6, SockType: unix.SOCK_STREAM},
			want:  "[::1]:80",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := transport.Resolve(context.Background(), tc.hints)
			require.NoError(t, err)
			assert.Equal(t, tc.want, addr.String())
			assert.Equal(t, tc.kind, addr.Kind())
		})
	}
}

func TestResolve_Localhost(t *testing.T) {
	addr, err := transport.Resolve(context.Background(), transport.Hints{
		Host: "localhost", Port: "9999", SockType: unix.SOCK_STREAM, Passive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, unix.AF_INET, addr.Family)
	assert.Equal(t, unix.IPPROTO_TCP, addr.Protocol)
	sa, ok := addr.Sockaddr.(*unix.SockaddrInet4)
	require.True(t, ok)
	assert.Equal(t, 9999, sa.Port)
	assert.Equal(t, byte(127), sa.Addr[0])
}

func TestResolve_Failures(t *testing.T) {
	for _, tc := range [...]struct {
		name  string
		hints transport.Hints
	}{
		{"unknown service", transport.Hints{Port: "no-such-service-xyz", SockType: unix.SOCK_STREAM}},
		{"port out of range", transport.Hints{Port: "70000", SockType: unix.SOCK_STREAM}},
		{"family mismatch", transport.Hints{Host: "::1", Port: "1", SockType: unix.SOCK_STREAM}},
		{"bad socket type", transport.Hints{Port: "1", SockType: unix.SOCK_RAW}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := transport.Resolve(context.Background(), tc.hints)
			require.Error(t, err)
			assert.ErrorIs(t, err, api.ErrResolutionFailed)
			assert.Contains(t, err.Error(), "getaddrinfo() failed: ")
		})
	}
}
