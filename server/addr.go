//go:build linux || darwin

package server

import (
	"net"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/logging"
	"github.com/momentics/hioload-net/transport"
)

// boundAddr returns the address h is bound to. When getsockname fails the
// resolved bind target stands in, so the result is never nil.
func boundAddr(h *transport.Handle, resolved *transport.ResolvedAddress, kind api.TransportKind, log *logging.Logger) net.Addr {
	local, err := h.LocalAddr(kind)
	if err == nil && local != nil {
		return local
	}
	log.Warning().Err(err).Str(logging.FieldAddr, resolved.String()).Log("local address unavailable")
	if fallback := transport.SockaddrToAddr(resolved.Sockaddr, kind); fallback != nil {
		return fallback
	}
	return &net.IPAddr{}
}
