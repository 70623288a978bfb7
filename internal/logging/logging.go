// Package logging builds the structured diagnostics logger shared by the
// servers, the client and the CLI. Events are JSON lines (stumpy backend),
// kept apart from the plain-text lines the tool prints on stdout.
package logging

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the generified logiface logger passed between packages. A nil
// *Logger is valid and discards everything.
type Logger = logiface.Logger[logiface.Event]

// Common field keys.
const (
	FieldComponent = "component"
	FieldFD        = "fd"
	FieldPeer      = "peer"
	FieldID        = "id"
	FieldAddr      = "addr"
	FieldBytes     = "bytes"
	FieldOpen      = "open"
)

// New returns a JSON logger writing events at or above level to w.
func New(w io.Writer, level logiface.Level) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField("time"),
		),
		stumpy.L.WithLevel(level),
	).Logger()
}

// Component returns a child logger tagging every event with name. It returns
// nil for a nil parent.
func Component(parent *Logger, name string) *Logger {
	c := parent.Clone()
	if c == nil {
		return nil
	}
	return c.Str(FieldComponent, name).Logger()
}
