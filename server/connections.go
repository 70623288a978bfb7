// File: server/connections.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ordered set of accepted peers, owned by the event loop goroutine.

package server

import (
	"errors"
	"fmt"
	"net"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/transport"
)

// Peer is one accepted stream connection.
type Peer struct {
	h    *transport.Handle
	addr net.Addr
	id   uint64
}

// NewPeer wraps an accepted handle. The peer takes ownership of h.
func NewPeer(h *transport.Handle, addr net.Addr, id uint64) *Peer {
	return &Peer{h: h, addr: addr, id: id}
}

// FD returns the peer's descriptor.
func (p *Peer) FD() int { return p.h.FD() }

// Handle returns the owned socket handle.
func (p *Peer) Handle() *transport.Handle { return p.h }

// Addr returns the remote address, which may be nil.
func (p *Peer) Addr() net.Addr { return p.addr }

// ID returns the accept sequence number.
func (p *Peer) ID() uint64 { return p.id }

func (p *Peer) String() string {
	if p.addr == nil {
		return fmt.Sprintf("peer#%d(fd=%d)", p.id, p.FD())
	}
	return fmt.Sprintf("peer#%d(%s)", p.id, p.addr)
}

// Connections keeps peers in accept order with no duplicate descriptors.
// It is not safe for concurrent use.
type Connections struct {
	q   *queue.Queue
	fds map[int]struct{}
}

// NewConnections returns an empty set.
func NewConnections() *Connections {
	return &Connections{q: queue.New(), fds: make(map[int]struct{})}
}

// Len returns the number of open peers.
func (c *Connections) Len() int { return c.q.Length() }

// Insert appends p. The peer must hold a valid, not yet tracked descriptor.
func (c *Connections) Insert(p *Peer) error {
	if p == nil || !p.h.Valid() {
		return fmt.Errorf("connections: insert: %w", api.ErrInvalidArgument)
	}
	fd := p.FD()
	if _, ok := c.fds[fd]; ok {
		return fmt.Errorf("connections: insert fd %d: %w", fd, api.ErrAlreadyExists)
	}
	c.fds[fd] = struct{}{}
	c.q.Add(p)
	return nil
}

// Contains reports whether fd belongs to a tracked peer.
func (c *Connections) Contains(fd int) bool {
	_, ok := c.fds[fd]
	return ok
}

// Each calls fn for every peer in order. fn must not mutate the set.
func (c *Connections) Each(fn func(*Peer)) {
	for i := 0; i < c.q.Length(); i++ {
		fn(c.q.Get(i).(*Peer))
	}
}

// Snapshot returns the tracked descriptors in order.
func (c *Connections) Snapshot() []int {
	out := make([]int, 0, c.q.Length())
	c.Each(func(p *Peer) { out = append(out, p.FD()) })
	return out
}

// MaxFD returns the largest descriptor among the peers and listenFD.
func (c *Connections) MaxFD(listenFD int) int {
	max := listenFD
	c.Each(func(p *Peer) {
		if fd := p.FD(); fd > max {
			max = fd
		}
	})
	return max
}

// ForEachReady calls fn, in order, for every peer whose descriptor ready
// reports true. A peer for which fn returns keep == false is closed and
// dropped. The pass rotates the queue once, so removals never skip or
// revisit a peer. After fn returns an error no further peers are visited
// and that error is returned.
func (c *Connections) ForEachReady(ready func(fd int) bool, fn func(*Peer) (keep bool, err error)) error {
	var firstErr error
	for n := c.q.Length(); n > 0; n-- {
		p := c.q.Remove().(*Peer)
		keep := true
		if firstErr == nil && ready(p.FD()) {
			var err error
			keep, err = fn(p)
			if err != nil {
				firstErr = err
			}
		}
		if keep {
			c.q.Add(p)
			continue
		}
		c.drop(p)
	}
	return firstErr
}

// Remove closes and drops the peer holding fd. It reports whether one was
// found.
func (c *Connections) Remove(fd int) bool {
	if !c.Contains(fd) {
		return false
	}
	_ = c.ForEachReady(
		func(candidate int) bool { return candidate == fd },
		func(*Peer) (bool, error) { return false, nil },
	)
	return true
}

// Close releases every peer and empties the set.
func (c *Connections) Close() error {
	var errs []error
	for c.q.Length() > 0 {
		if err := c.drop(c.q.Remove().(*Peer)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Connections) drop(p *Peer) error {
	delete(c.fds, p.FD())
	return p.h.Release()
}
