// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error kinds and the operation error reported by every socket call.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSupported    = errors.New("operation not supported")
	ErrAlreadyExists   = errors.New("resource already exists")
)

// Failure kinds. Every one of them except ErrUsage is carried by an OpError.
var (
	ErrUsage                = errors.New("usage error")
	ErrResolutionFailed     = errors.New("address resolution failed")
	ErrSocketCreationFailed = errors.New("socket creation failed")
	ErrBindFailed           = errors.New("bind failed")
	ErrListenFailed         = errors.New("listen failed")
	ErrWaitFailed           = errors.New("readiness wait failed")
	ErrAcceptFailed         = errors.New("accept failed")
	ErrReadFailed           = errors.New("read failed")
	ErrSendFailed           = errors.New("send failed")
	ErrConnectFailed        = errors.New("connect failed")
)

// OpError describes a failed system operation.
//
// Op is the name of the failing call as shown to the user, e.g. "bind()".
// Err is the underlying cause, usually a unix.Errno.
type OpError struct {
	Kind error
	Op   string
	Err  error
}

// NewOpError builds an OpError, returning nil when err is nil.
func NewOpError(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: kind, Op: op, Err: err}
}

// Error renders the single-line diagnostic, "<op> failed: <cause>".
func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *OpError) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}
