package server

import (
	"io"
	"os"

	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/internal/logging"
)

// Server defaults.
const (
	DefaultHost       = "localhost"
	DefaultBufferSize = 4096
	DefaultBacklog    = 20
)

// Config holds all server-side configuration parameters.
type Config struct {
	Host             string                   // bind host, resolved passively
	BufferSize       int                      // bytes read per recv / recvfrom
	Backlog          int                      // listen(2) backlog
	StrictReadErrors bool                     // a peer read error stops the TCP server
	Output           io.Writer                // destination of the observable lines
	Logger           *logging.Logger          // structured diagnostics, nil disables
	Metrics          *control.MetricsRegistry // runtime counters
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:       DefaultHost,
		BufferSize: DefaultBufferSize,
		Backlog:    DefaultBacklog,
		Output:     os.Stdout,
		Metrics:    control.NewMetricsRegistry(),
	}
}

func newConfig(opts []ServerOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.Backlog <= 0 {
		cfg.Backlog = DefaultBacklog
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = control.NewMetricsRegistry()
	}
	return cfg
}

// State enumerates the phases of the TCP event loop.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateDispatchAccept
	StateDispatchRead
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateDispatchAccept:
		return "dispatch-accept"
	case StateDispatchRead:
		return "dispatch-read"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
