//go:build linux || darwin

// File: transport/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Exclusive-ownership wrapper around one socket descriptor.

package transport

import (
	"runtime"
	"sync"
)

// noCopy is picked up by go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

var _ sync.Locker = (*noCopy)(nil)

// Handle owns a single descriptor. It is either valid (fd >= 0) or empty
// (fd == -1). Handles are used by pointer only; Move transfers ownership.
type Handle struct {
	noCopy noCopy
	fd     int
}

// NewHandle takes ownership of fd. A negative fd yields an empty handle.
func NewHandle(fd int) *Handle {
	if fd < 0 {
		fd = -1
	}
	h := &Handle{fd: fd}
	if fd >= 0 {
		runtime.SetFinalizer(h, (*Handle).Release)
	}
	return h
}

// Valid reports whether the handle holds a live descriptor.
func (h *Handle) Valid() bool {
	return h != nil && h.fd >= 0
}

// FD returns the raw descriptor, or -1 when empty.
func (h *Handle) FD() int {
	if h == nil {
		return -1
	}
	return h.fd
}

// Move transfers the descriptor to a new handle and leaves h empty.
func (h *Handle) Move() *Handle {
	if !h.Valid() {
		return NewHandle(-1)
	}
	fd := h.fd
	h.fd = -1
	runtime.SetFinalizer(h, nil)
	return NewHandle(fd)
}

// Release closes the descriptor if the handle is valid. Calling it on an
// empty handle, or more than once, does nothing.
func (h *Handle) Release() error {
	if !h.Valid() {
		return nil
	}
	fd := h.fd
	h.fd = -1
	runtime.SetFinalizer(h, nil)
	return closeFD(fd)
}

// Detach gives up ownership without closing and returns the descriptor,
// leaving h empty.
func (h *Handle) Detach() int {
	if !h.Valid() {
		return -1
	}
	fd := h.fd
	h.fd = -1
	runtime.SetFinalizer(h, nil)
	return fd
}
