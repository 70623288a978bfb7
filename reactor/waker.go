//go:build linux || darwin

// File: reactor/waker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Waker interrupts a blocked Set.Wait from another goroutine. Its FD is added
// to the readiness set; Wake makes it readable until Drain is called.
type Waker struct {
	mu     sync.Mutex
	rfd    int
	wfd    int
	closed bool
}

// FD returns the descriptor to watch for readability.
func (w *Waker) FD() int { return w.rfd }

// Wake makes FD readable. Waking an already signalled or closed waker is a
// no-op.
func (w *Waker) Wake() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	if err := w.signal(); err != nil && err != unix.EAGAIN {
		return err
	}
	return nil
}

// Drain consumes pending wake-ups so FD stops reporting readable.
func (w *Waker) Drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(w.rfd, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

// Close releases the waker's descriptors. It may be called more than once.
func (w *Waker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.close()
}
