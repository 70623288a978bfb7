// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for server-level monitoring.
// Exposes counters in a thread-safe map with dynamic registration.

package control

import "sync"

// Metric keys published by the servers.
const (
	ConnectionsAccepted = "connections_accepted"
	ConnectionsOpen     = "connections_open"
	ConnectionsClosed   = "connections_closed"
	MessagesReceived    = "messages_received"
	BytesReceived       = "bytes_received"
	ReadErrors          = "read_errors"
	ListenAddr          = "listen_addr"
)

// MetricsRegistry holds named counters and arbitrary gauges.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.mu.Unlock()
}

// Add increments the int64 counter at key by delta and returns the new value.
// A key holding a non-counter value is overwritten.
func (mr *MetricsRegistry) Add(key string, delta int64) int64 {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	v, _ := mr.metrics[key].(int64)
	v += delta
	mr.metrics[key] = v
	return v
}

// Int64 returns the counter at key, zero when unset.
func (mr *MetricsRegistry) Int64(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	v, _ := mr.metrics[key].(int64)
	return v
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
