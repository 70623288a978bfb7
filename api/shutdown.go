// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by long-running components.
type GracefulShutdown interface {
	// Shutdown stops the component, releases every resource it owns and
	// waits until its loop has returned.
	Shutdown() error
}
