//go:build linux || darwin

// File: reactor/set.go
// Author: momentics <momentics@gmail.com>
//
// Readiness set rebuilt on every loop pass and waited on with poll(2).

package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
)

const readable = unix.POLLIN | unix.POLLHUP | unix.POLLERR

// Set maps the descriptors of one loop pass to their read readiness.
// The zero value is ready to use.
type Set struct {
	fds   []unix.PollFd
	index map[int]int
	max   int
}

// Reset empties the set, keeping its storage.
func (s *Set) Reset() {
	s.fds = s.fds[:0]
	clear(s.index)
	s.max = -1
}

// Add watches fd for readability. Negative and already present
// descriptors are ignored.
func (s *Set) Add(fd int) {
	if fd < 0 {
		return
	}
	if s.index == nil {
		s.index = make(map[int]int)
	}
	if _, ok := s.index[fd]; ok {
		return
	}
	s.index[fd] = len(s.fds)
	s.fds = append(s.fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	if len(s.fds) == 1 || fd > s.max {
		s.max = fd
	}
}

// Len returns the number of watched descriptors.
func (s *Set) Len() int { return len(s.fds) }

// Max returns the largest watched descriptor, or -1 when empty.
func (s *Set) Max() int {
	if len(s.fds) == 0 {
		return -1
	}
	return s.max
}

// Contains reports whether fd is watched in this pass.
func (s *Set) Contains(fd int) bool {
	_, ok := s.index[fd]
	return ok
}

// Ready reports whether the last Wait marked fd readable. Hang-up and error
// conditions count as readable: the next read reports them.
func (s *Set) Ready(fd int) bool {
	i, ok := s.index[fd]
	return ok && s.fds[i].Revents&readable != 0
}

// Wait blocks until at least one descriptor is ready. A signal interruption is
// returned as an error matching unix.EINTR; callers rebuild and retry.
func (s *Set) Wait() (int, error) {
	for i := range s.fds {
		s.fds[i].Revents = 0
	}
	n, err := unix.Poll(s.fds, -1)
	if err != nil {
		return 0, api.NewOpError(api.ErrWaitFailed, "poll()", err)
	}
	return n, nil
}
