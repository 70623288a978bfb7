// File: client/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import "github.com/momentics/hioload-net/internal/logging"

// DefaultHost is the server host the client connects to.
const DefaultHost = "localhost"

// Config holds the client parameters.
type Config struct {
	Host   string          // resolved actively, IPv4
	Logger *logging.Logger // nil disables diagnostics
}

// Option customizes a client run.
type Option func(*Config)

// WithHost overrides the destination host.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}

// WithLogger attaches a diagnostics logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func newConfig(opts []Option) *Config {
	cfg := &Config{Host: DefaultHost}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	return cfg
}
