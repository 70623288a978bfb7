//go:build linux || darwin

// File: client/client.go
// Package client sends lines read from an input stream to a server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One datagram or one stream write per input line, newline stripped. A
// trailing line without a terminating newline is discarded at end of input.

package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/console"
	"github.com/momentics/hioload-net/internal/logging"
	"github.com/momentics/hioload-net/transport"
)

// Run connects (TCP) or addresses (UDP) the server on port and forwards in
// line by line until end of input or cancellation, returning nil for both.
func Run(ctx context.Context, kind api.TransportKind, port string, in io.Reader, out io.Writer, opts ...Option) error {
	cfg := newConfig(opts)
	log := logging.Component(cfg.Logger, "client").Clone().Str("transport", kind.String()).Logger()
	p := console.New(out)

	var sotype int
	switch kind {
	case api.TransportTCP:
		sotype = unix.SOCK_STREAM
	case api.TransportUDP:
		sotype = unix.SOCK_DGRAM
	default:
		return fmt.Errorf("client: transport %d: %w", kind, api.ErrNotSupported)
	}

	addr, err := transport.Resolve(ctx, transport.Hints{
		Host:     cfg.Host,
		Port:     port,
		SockType: sotype,
	})
	if err != nil {
		return err
	}
	h, err := addr.Socket()
	if err != nil {
		return err
	}
	defer func() { _ = h.Release() }()

	send := func(line []byte) error {
		_, err := h.Send(line)
		return err
	}
	if kind == api.TransportUDP {
		send = func(line []byte) error { return h.SendTo(line, addr.Sockaddr) }
	} else {
		p.ConnectingClient(kind.String(), port)
		if err := h.Connect(addr.Sockaddr); err != nil {
			return err
		}
		log.Debug().Str(logging.FieldAddr, addr.String()).Log("connected")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, in)

	var sent int
	for {
		if ctx.Err() != nil {
			log.Debug().Int("lines", sent).Log("cancelled")
			return nil
		}
		var next inputLine
		select {
		case <-ctx.Done():
			continue
		case next = <-lines:
		}
		if next.err != nil {
			if errors.Is(next.err, io.EOF) {
				if next.text != "" {
					log.Debug().Int(logging.FieldBytes, len(next.text)).Log("discarding unterminated line")
				}
				log.Debug().Int("lines", sent).Log("end of input")
				return nil
			}
			return fmt.Errorf("client: reading input: %w", next.err)
		}
		text := strings.TrimSuffix(next.text, "\n")
		p.Sending([]byte(text))
		if err := send([]byte(text)); err != nil {
			return err
		}
		sent++
	}
}

type inputLine struct {
	text string
	err  error
}

// readLines feeds newline-terminated reads from in until an error, which is
// delivered last. A read blocked at cancellation is abandoned; the goroutine
// exits once it returns.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	out := make(chan inputLine)
	go func() {
		r := bufio.NewReader(in)
		for {
			text, err := r.ReadString('\n')
			select {
			case out <- inputLine{text: text, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}
