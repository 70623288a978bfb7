//go:build linux || darwin

// File: transport/resolve.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Host/port resolution into bindable or connectable socket addresses.

package transport

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

// Hints narrows a resolution, mirroring the getaddrinfo hints the servers
// and clients pass.
type Hints struct {
	Host     string // empty means wildcard (Passive) or loopback
	Port     string // numeric or service name, e.g. "9999" or "http"
	Family   int    // unix.AF_INET (default) or unix.AF_INET6
	SockType int    // unix.SOCK_STREAM or unix.SOCK_DGRAM
	Passive  bool   // resolving a bind target
}

// ResolvedAddress is everything needed to create and bind/connect a socket.
type ResolvedAddress struct {
	Family   int
	SockType int
	Protocol int
	Sockaddr unix.Sockaddr
}

// Kind returns the transport kind of the resolved socket type.
func (r *ResolvedAddress) Kind() api.TransportKind {
	if r.SockType == unix.SOCK_DGRAM {
		return api.TransportUDP
	}
	return api.TransportTCP
}

// Socket creates a socket matching the resolved family, type and protocol.
func (r *ResolvedAddress) Socket() (*Handle, error) {
	return Socket(r.Family, r.SockType, r.Protocol)
}

// String renders the address as host:port.
func (r *ResolvedAddress) String() string {
	if addr := SockaddrToAddr(r.Sockaddr, r.Kind()); addr != nil {
		return addr.String()
	}
	return "<unknown>"
}

// Resolve turns h into a single address. Failures are reported as
// api.ErrResolutionFailed.
func Resolve(ctx context.Context, h Hints) (*ResolvedAddress, error) {
	fail := func(err error) (*ResolvedAddress, error) {
		return nil, api.NewOpError(api.ErrResolutionFailed, "getaddrinfo()", err)
	}

	family := h.Family
	if family == 0 {
		family = unix.AF_INET
	}
	if family != unix.AF_INET && family != unix.AF_INET6 {
		return fail(fmt.Errorf("address family %d: %w", family, api.ErrNotSupported))
	}

	var network string
	var proto int
	switch h.SockType {
	case unix.SOCK_STREAM:
		network, proto = "tcp", unix.IPPROTO_TCP
	case unix.SOCK_DGRAM:
		network, proto = "udp", unix.IPPROTO_UDP
	default:
		return fail(fmt.Errorf("socket type %d: %w", h.SockType, api.ErrNotSupported))
	}

	port, err := net.DefaultResolver.LookupPort(ctx, network, h.Port)
	if err != nil {
		return fail(err)
	}

	ip, err := lookupIP(ctx, h.Host, family, h.Passive)
	if err != nil {
		return fail(err)
	}

	out := &ResolvedAddress{Family: family, SockType: h.SockType, Protocol: proto}
	if family == unix.AF_INET {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip.To4())
		out.Sockaddr = sa
	} else {
		sa := &unix.SockaddrInet6{Port: port}
		copy(sa.Addr[:], ip.To16())
		out.Sockaddr = sa
	}
	return out, nil
}

func lookupIP(ctx context.Context, host string, family int, passive bool) (net.IP, error) {
	v4 := family == unix.AF_INET
	if host == "" {
		switch {
		case passive && v4:
			return net.IPv4zero, nil
		case passive:
			return net.IPv6unspecified, nil
		case v4:
			return net.IPv4(127, 0, 0, 1), nil
		default:
			return net.IPv6loopback, nil
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		if matchesFamily(ip, v4) {
			return ip, nil
		}
		return nil, fmt.Errorf("%s: address family mismatch", host)
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		if matchesFamily(a.IP, v4) {
			return a.IP, nil
		}
	}
	return nil, fmt.Errorf("%s: no address for requested family", host)
}

func matchesFamily(ip net.IP, v4 bool) bool {
	if v4 {
		return ip.To4() != nil
	}
	return ip.To4() == nil && ip.To16() != nil
}
