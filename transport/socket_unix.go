//go:build linux || darwin

// File: transport/socket_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket system calls for Unix-like systems (Linux, macOS).

package transport

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

func closeFD(fd int) error {
	return unix.Close(fd)
}

// Socket creates a close-on-exec socket.
func Socket(family, sotype, proto int) (*Handle, error) {
	fd, err := unix.Socket(family, sotype, proto)
	if err != nil {
		return nil, api.NewOpError(api.ErrSocketCreationFailed, "socket()", err)
	}
	unix.CloseOnExec(fd)
	return NewHandle(fd), nil
}

// SetReuseAddr enables SO_REUSEADDR.
func (h *Handle) SetReuseAddr() error {
	err := unix.SetsockoptInt(h.FD(), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	return api.NewOpError(api.ErrSocketCreationFailed, "setsockopt()", err)
}

// SetNonblock switches the descriptor to non-blocking mode.
func (h *Handle) SetNonblock() error {
	err := unix.SetNonblock(h.FD(), true)
	return api.NewOpError(api.ErrSocketCreationFailed, "fcntl()", err)
}

// Bind binds the socket to sa.
func (h *Handle) Bind(sa unix.Sockaddr) error {
	return api.NewOpError(api.ErrBindFailed, "bind()", unix.Bind(h.FD(), sa))
}

// Listen marks the socket as passive with the given backlog.
func (h *Handle) Listen(backlog int) error {
	return api.NewOpError(api.ErrListenFailed, "listen()", unix.Listen(h.FD(), backlog))
}

// Accept takes the next pending connection off the listening socket. The
// returned handle is close-on-exec.
func (h *Handle) Accept() (*Handle, unix.Sockaddr, error) {
	fd, sa, err := unix.Accept(h.FD())
	if err != nil {
		return nil, nil, api.NewOpError(api.ErrAcceptFailed, "accept()", err)
	}
	unix.CloseOnExec(fd)
	return NewHandle(fd), sa, nil
}

// Connect connects the socket to sa.
func (h *Handle) Connect(sa unix.Sockaddr) error {
	for {
		err := unix.Connect(h.FD(), sa)
		if err == unix.EINTR {
			continue
		}
		return api.NewOpError(api.ErrConnectFailed, "connect()", err)
	}
}

// Recv reads at most len(buf) bytes from a stream socket. Zero bytes with a
// nil error means the peer shut down its side.
func (h *Handle) Recv(buf []byte) (int, error) {
	n, _, err := unix.Recvfrom(h.FD(), buf, 0)
	if err != nil {
		return 0, api.NewOpError(api.ErrReadFailed, "recv()", err)
	}
	return n, nil
}

// RecvFrom reads one datagram and returns its sender.
func (h *Handle) RecvFrom(buf []byte) (int, unix.Sockaddr, error) {
	n, from, err := unix.Recvfrom(h.FD(), buf, 0)
	if err != nil {
		return 0, nil, api.NewOpError(api.ErrReadFailed, "recvfrom()", err)
	}
	return n, from, nil
}

// Send writes all of p to a connected stream socket.
func (h *Handle) Send(p []byte) (int, error) {
	var written int
	for written < len(p) {
		n, err := unix.SendmsgN(h.FD(), p[written:], nil, nil, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return written, api.NewOpError(api.ErrSendFailed, "send()", err)
		}
		written += n
	}
	return written, nil
}

// SendTo sends p as a single datagram to sa.
func (h *Handle) SendTo(p []byte, sa unix.Sockaddr) error {
	return api.NewOpError(api.ErrSendFailed, "sendto()", unix.Sendto(h.FD(), p, 0, sa))
}

// LocalAddr returns the address the socket is bound to.
func (h *Handle) LocalAddr(kind api.TransportKind) (net.Addr, error) {
	sa, err := unix.Getsockname(h.FD())
	if err != nil {
		return nil, api.NewOpError(api.ErrInvalidArgument, "getsockname()", err)
	}
	return SockaddrToAddr(sa, kind), nil
}

// SockaddrToAddr converts an inet sockaddr into a net.Addr of the given kind.
// Unknown families yield nil.
func SockaddrToAddr(sa unix.Sockaddr, kind api.TransportKind) net.Addr {
	var (
		ip   net.IP
		port int
		zone string
	)
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		ip, port = net.IP(append([]byte(nil), sa.Addr[:]...)), sa.Port
	case *unix.SockaddrInet6:
		ip, port = net.IP(append([]byte(nil), sa.Addr[:]...)), sa.Port
		if sa.ZoneId != 0 {
			if ifi, err := net.InterfaceByIndex(int(sa.ZoneId)); err == nil {
				zone = ifi.Name
			}
		}
	default:
		return nil
	}
	if kind == api.TransportUDP {
		return &net.UDPAddr{IP: ip, Port: port, Zone: zone}
	}
	return &net.TCPAddr{IP: ip, Port: port, Zone: zone}
}

// IsTransient reports whether err is a condition the caller should simply
// retry on the next readiness pass.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK)
}

// IsAcceptTransient extends IsTransient with ECONNABORTED, which accept
// reports when a pending connection was reset before it was taken.
func IsAcceptTransient(err error) bool {
	return IsTransient(err) || errors.Is(err, unix.ECONNABORTED)
}
