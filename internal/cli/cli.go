//go:build linux || darwin

// File: internal/cli/cli.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Argument parsing and mode dispatch for the net command.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joeycumines/logiface"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/client"
	"github.com/momentics/hioload-net/internal/console"
	"github.com/momentics/hioload-net/internal/logging"
	"github.com/momentics/hioload-net/server"
)

// Program is the name printed in the usage text.
const Program = "net"

// Mode is one of the four ways the command can run.
type Mode byte

const (
	ModeUDPClient Mode = 'u'
	ModeTCPClient Mode = 't'
	ModeUDPServer Mode = 'U'
	ModeTCPServer Mode = 'T'
)

// Kind returns the transport the mode runs on.
func (m Mode) Kind() api.TransportKind {
	if m == ModeUDPClient || m == ModeUDPServer {
		return api.TransportUDP
	}
	return api.TransportTCP
}

// Server reports whether the mode runs a server.
func (m Mode) Server() bool { return m == ModeUDPServer || m == ModeTCPServer }

// Parse validates args (program name first) and returns the mode and port.
// Only the first byte of the mode argument is significant.
func Parse(args []string) (Mode, string, error) {
	if len(args) < 3 || args[1] == "" {
		return 0, "", fmt.Errorf("%d arguments: %w", len(args), api.ErrUsage)
	}
	switch m := Mode(args[1][0]); m {
	case ModeUDPClient, ModeTCPClient, ModeUDPServer, ModeTCPServer:
		return m, args[2], nil
	default:
		return 0, "", fmt.Errorf("mode %q: %w", args[1], api.ErrUsage)
	}
}

// Run executes the command and returns the process exit status. Contract
// lines go to stdout, diagnostics to stderr.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	out := console.New(stdout)
	log := logging.New(stderr, logiface.LevelWarning)

	mode, port, err := Parse(args)
	if err != nil {
		out.Usage(Program)
		return 1
	}

	switch {
	case mode == ModeTCPServer:
		err = server.NewTCPServer(port, server.WithOutput(stdout), server.WithLogger(log)).Run(ctx)
	case mode == ModeUDPServer:
		err = server.NewUDPServer(port, server.WithOutput(stdout), server.WithLogger(log)).Run(ctx)
	default:
		err = client.Run(ctx, mode.Kind(), port, stdin, stdout, client.WithLogger(log))
	}
	if err != nil {
		out.CaughtException(err)
		return 1
	}
	return 0
}
