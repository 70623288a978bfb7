//go:build darwin

package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

// NewWaker creates a waker backed by a non-blocking self-pipe.
func NewWaker() (*Waker, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, api.NewOpError(api.ErrWaitFailed, "pipe()", err)
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, api.NewOpError(api.ErrWaitFailed, "fcntl()", err)
		}
	}
	return &Waker{rfd: fds[0], wfd: fds[1]}, nil
}

func (w *Waker) signal() error {
	_, err := unix.Write(w.wfd, []byte{1})
	return err
}

func (w *Waker) close() error {
	err := unix.Close(w.rfd)
	if cerr := unix.Close(w.wfd); err == nil {
		err = cerr
	}
	return err
}
