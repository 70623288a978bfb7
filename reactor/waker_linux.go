//go:build linux

package reactor

import (
	"encoding/binary"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

// NewWaker creates a waker backed by a non-blocking eventfd.
func NewWaker() (*Waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, api.NewOpError(api.ErrWaitFailed, "eventfd()", err)
	}
	return &Waker{rfd: fd, wfd: fd}, nil
}

func (w *Waker) signal() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(w.wfd, buf[:])
	return err
}

func (w *Waker) close() error {
	return unix.Close(w.rfd)
}
