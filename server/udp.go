//go:build linux || darwin

// File: server/udp.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/internal/console"
	"github.com/momentics/hioload-net/internal/logging"
	"github.com/momentics/hioload-net/reactor"
	"github.com/momentics/hioload-net/transport"
)

// UDPServer prints every datagram received on its port.
type UDPServer struct {
	lifecycle

	cfg     *Config
	port    string
	out     *console.Printer
	log     *logging.Logger
	metrics *control.MetricsRegistry

	sock *transport.Handle
	addr net.Addr
	set  reactor.Set
	buf  []byte
}

var _ api.GracefulShutdown = (*UDPServer)(nil)

// NewUDPServer constructs a datagram server for port.
func NewUDPServer(port string, opts ...ServerOption) *UDPServer {
	cfg := newConfig(opts)
	return &UDPServer{
		cfg:     cfg,
		port:    port,
		out:     console.New(cfg.Output),
		log:     logging.Component(cfg.Logger, "udp-server"),
		metrics: cfg.Metrics,
		buf:     make([]byte, cfg.BufferSize),
	}
}

// Metrics returns the registry the server publishes to.
func (s *UDPServer) Metrics() *control.MetricsRegistry { return s.metrics }

// Addr returns the bound address once Open succeeded.
func (s *UDPServer) Addr() net.Addr { return s.addr }

// Open announces the server, then resolves and binds.
func (s *UDPServer) Open(ctx context.Context) error {
	if s.sock.Valid() {
		return fmt.Errorf("udp server: open: %w", api.ErrAlreadyExists)
	}
	s.out.StartingServer("UDP", s.port)

	addr, err := transport.Resolve(ctx, transport.Hints{
		Host:     s.cfg.Host,
		Port:     s.port,
		SockType: unix.SOCK_DGRAM,
		Passive:  true,
	})
	if err != nil {
		return err
	}
	sock, err := addr.Socket()
	if err != nil {
		return err
	}
	if err := sock.SetReuseAddr(); err != nil {
		s.log.Warning().Err(err).Log("reuse address not set")
	}
	if err := sock.Bind(addr.Sockaddr); err != nil {
		_ = sock.Release()
		return err
	}
	if err := sock.SetNonblock(); err != nil {
		_ = sock.Release()
		return err
	}
	s.addr = boundAddr(sock, addr, api.TransportUDP, s.log)
	s.metrics.Set(control.ListenAddr, s.addr.String())
	s.sock = sock
	s.log.Info().Str(logging.FieldAddr, addr.String()).Log("bound")
	return nil
}

// Run opens the server and serves until ctx is cancelled or a fatal error.
func (s *UDPServer) Run(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve receives datagrams until ctx is cancelled (nil) or recvfrom fails.
func (s *UDPServer) Serve(ctx context.Context) error {
	if !s.sock.Valid() {
		return fmt.Errorf("udp server: serve before open: %w", api.ErrInvalidArgument)
	}
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end()
	defer func() {
		if err := s.sock.Release(); err != nil {
			s.log.Warning().Err(err).Log("closing socket")
		}
	}()

	waker, err := reactor.NewWaker()
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = waker.Wake() })
	defer func() {
		stop()
		_ = waker.Close()
	}()

	fd := s.sock.FD()
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.set.Reset()
		s.set.Add(fd)
		s.set.Add(waker.FD())
		if _, err := s.set.Wait(); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		if s.set.Ready(waker.FD()) {
			waker.Drain()
		}
		if !s.set.Ready(fd) {
			continue
		}
		n, from, err := s.sock.RecvFrom(s.buf)
		if err != nil {
			if transport.IsTransient(err) {
				continue
			}
			s.log.Err().Err(err).Log("receive failed")
			return err
		}
		s.out.Message(s.buf[:n])
		s.metrics.Add(control.MessagesReceived, 1)
		s.metrics.Add(control.BytesReceived, int64(n))
		if src := transport.SockaddrToAddr(from, api.TransportUDP); src != nil {
			s.log.Debug().Str(logging.FieldPeer, src.String()).Int(logging.FieldBytes, n).Log("datagram")
		}
	}
}
