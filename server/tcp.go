//go:build linux || darwin

// File: server/tcp.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection-multiplexing TCP server driven by a single readiness wait.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/internal/console"
	"github.com/momentics/hioload-net/internal/logging"
	"github.com/momentics/hioload-net/reactor"
	"github.com/momentics/hioload-net/transport"
)

// TCPServer accepts stream connections and prints every read from them.
type TCPServer struct {
	lifecycle

	cfg     *Config
	port    string
	out     *console.Printer
	log     *logging.Logger
	metrics *control.MetricsRegistry

	listener *transport.Handle
	addr     net.Addr
	conns    *Connections
	set      reactor.Set
	buf      []byte
	nextID   uint64
	state    atomic.Int32
}

var _ api.GracefulShutdown = (*TCPServer)(nil)

// NewTCPServer constructs a server for port, which may be numeric or a
// service name.
func NewTCPServer(port string, opts ...ServerOption) *TCPServer {
	cfg := newConfig(opts)
	return &TCPServer{
		cfg:     cfg,
		port:    port,
		out:     console.New(cfg.Output),
		log:     logging.Component(cfg.Logger, "tcp-server"),
		metrics: cfg.Metrics,
		conns:   NewConnections(),
		buf:     make([]byte, cfg.BufferSize),
	}
}

// Metrics returns the registry the server publishes to.
func (s *TCPServer) Metrics() *control.MetricsRegistry { return s.metrics }

// State returns the current loop state. Safe from any goroutine.
func (s *TCPServer) State() State { return State(s.state.Load()) }

func (s *TCPServer) setState(st State) { s.state.Store(int32(st)) }

// Addr returns the bound address once Open succeeded.
func (s *TCPServer) Addr() net.Addr { return s.addr }

// Open announces the server, then resolves, binds and listens.
func (s *TCPServer) Open(ctx context.Context) error {
	if s.listener.Valid() {
		return fmt.Errorf("tcp server: open: %w", api.ErrAlreadyExists)
	}
	s.out.StartingServer("TCP", s.port)

	addr, err := transport.Resolve(ctx, transport.Hints{
		Host:     s.cfg.Host,
		Port:     s.port,
		SockType: unix.SOCK_STREAM,
		Passive:  true,
	})
	if err != nil {
		return err
	}
	ln, err := addr.Socket()
	if err != nil {
		return err
	}
	if err := ln.SetReuseAddr(); err != nil {
		s.log.Warning().Err(err).Log("reuse address not set")
	}
	if err := ln.Bind(addr.Sockaddr); err != nil {
		_ = ln.Release()
		return err
	}
	if err := ln.Listen(s.cfg.Backlog); err != nil {
		_ = ln.Release()
		return err
	}
	if err := ln.SetNonblock(); err != nil {
		_ = ln.Release()
		return err
	}
	s.addr = boundAddr(ln, addr, api.TransportTCP, s.log)
	s.metrics.Set(control.ListenAddr, s.addr.String())
	s.listener = ln
	s.log.Info().Str(logging.FieldAddr, addr.String()).Int(logging.FieldFD, ln.FD()).Log("listening")
	return nil
}

// Run opens the server and serves until ctx is cancelled or a fatal error.
func (s *TCPServer) Run(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the event loop on the opened listener. It returns nil after a
// cancellation, and the fatal error otherwise. Every peer and the listener
// are closed on return.
func (s *TCPServer) Serve(ctx context.Context) error {
	if !s.listener.Valid() {
		return fmt.Errorf("tcp server: serve before open: %w", api.ErrInvalidArgument)
	}
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer s.end()

	waker, err := reactor.NewWaker()
	if err != nil {
		s.shutdown()
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = waker.Wake() })
	defer func() {
		stop()
		_ = waker.Close()
	}()

	err = s.loop(ctx, waker)
	s.shutdown()
	if err != nil {
		s.log.Err().Err(err).Log("event loop stopped")
	}
	return err
}

func (s *TCPServer) loop(ctx context.Context, waker *reactor.Waker) error {
	listenFD := s.listener.FD()
	for {
		if ctx.Err() != nil {
			s.log.Info().Log("shutdown requested")
			return nil
		}
		s.setState(StateListening)

		s.set.Reset()
		s.set.Add(listenFD)
		s.set.Add(waker.FD())
		s.conns.Each(func(p *Peer) { s.set.Add(p.FD()) })

		if _, err := s.set.Wait(); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}

		if s.set.Ready(waker.FD()) {
			waker.Drain()
			if ctx.Err() != nil {
				continue
			}
		}

		if s.set.Ready(listenFD) {
			if err := s.accept(); err != nil {
				return err
			}
		}

		s.setState(StateDispatchRead)
		if err := s.conns.ForEachReady(s.set.Ready, s.read); err != nil {
			return err
		}
	}
}

func (s *TCPServer) accept() error {
	s.setState(StateDispatchAccept)
	h, sa, err := s.listener.Accept()
	if err != nil {
		if transport.IsAcceptTransient(err) {
			s.log.Debug().Err(err).Log("accept retry")
			return nil
		}
		return err
	}
	s.nextID++
	peer := NewPeer(h, transport.SockaddrToAddr(sa, api.TransportTCP), s.nextID)
	if err := h.SetNonblock(); err != nil {
		s.log.Warning().Err(err).Str(logging.FieldPeer, peer.String()).Log("peer left blocking")
	}
	if err := s.conns.Insert(peer); err != nil {
		_ = h.Release()
		return err
	}
	s.out.NewConnection()
	s.metrics.Add(control.ConnectionsAccepted, 1)
	open := s.metrics.Add(control.ConnectionsOpen, 1)
	s.log.Debug().
		Uint64(logging.FieldID, peer.ID()).
		Str(logging.FieldPeer, peer.String()).
		Int64(logging.FieldOpen, open).
		Log("accepted")
	return nil
}

// read services one ready peer. Returning keep == false drops it.
func (s *TCPServer) read(p *Peer) (bool, error) {
	n, err := p.Handle().Recv(s.buf)
	switch {
	case err != nil && transport.IsTransient(err):
		return true, nil
	case err != nil:
		s.metrics.Add(control.ReadErrors, 1)
		if s.cfg.StrictReadErrors {
			return true, err
		}
		s.log.Warning().Err(err).Uint64(logging.FieldID, p.ID()).Str(logging.FieldPeer, p.String()).Log("dropping peer")
		s.closed(p)
		return false, nil
	case n == 0:
		s.closed(p)
		return false, nil
	default:
		s.out.Message(s.buf[:n])
		s.metrics.Add(control.MessagesReceived, 1)
		s.metrics.Add(control.BytesReceived, int64(n))
		return true, nil
	}
}

func (s *TCPServer) closed(p *Peer) {
	s.out.ClosingConnection()
	s.metrics.Add(control.ConnectionsClosed, 1)
	open := s.metrics.Add(control.ConnectionsOpen, -1)
	s.log.Debug().
		Uint64(logging.FieldID, p.ID()).
		Str(logging.FieldPeer, p.String()).
		Int64(logging.FieldOpen, open).
		Log("closed")
}

// shutdown closes every peer and the listener.
func (s *TCPServer) shutdown() {
	s.setState(StateShutdown)
	if n := s.conns.Len(); n > 0 {
		s.metrics.Add(control.ConnectionsOpen, -int64(n))
		s.metrics.Add(control.ConnectionsClosed, int64(n))
	}
	if err := s.conns.Close(); err != nil {
		s.log.Warning().Err(err).Log("closing peers")
	}
	if err := s.listener.Release(); err != nil {
		s.log.Warning().Err(err).Log("closing listener")
	}
}
