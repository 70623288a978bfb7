// File: server/options.go
// Package server defines functional options for the servers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"io"

	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/internal/logging"
)

// ServerOption customizes server initialization.
type ServerOption func(*Config)

// WithHost overrides the bind host.
func WithHost(host string) ServerOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithBufferSize sets the per-read buffer size.
func WithBufferSize(n int) ServerOption {
	return func(c *Config) {
		c.BufferSize = n
	}
}

// WithBacklog sets the listen backlog of the TCP server.
func WithBacklog(n int) ServerOption {
	return func(c *Config) {
		c.Backlog = n
	}
}

// WithStrictReadErrors makes any peer read failure fatal to the TCP server
// instead of dropping only that peer.
func WithStrictReadErrors(strict bool) ServerOption {
	return func(c *Config) {
		c.StrictReadErrors = strict
	}
}

// WithOutput redirects the observable lines.
func WithOutput(w io.Writer) ServerOption {
	return func(c *Config) {
		c.Output = w
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *logging.Logger) ServerOption {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMetrics publishes counters into mr.
func WithMetrics(mr *control.MetricsRegistry) ServerOption {
	return func(c *Config) {
		c.Metrics = mr
	}
}
