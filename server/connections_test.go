//go:build linux || darwin

package server_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/server"
	"github.com/momentics/hioload-net/transport"
)

func newPeers(t *testing.T, n int) []*server.Peer {
	t.Helper()
	peers := make([]*server.Peer, n)
	for i := range peers {
		h, err := transport.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
		require.NoError(t, err)
		t.Cleanup(func() { _ = h.Release() })
		peers[i] = server.NewPeer(h, nil, uint64(i+1))
	}
	return peers
}

func fds(peers ...*server.Peer) []int {
	out := make([]int, len(peers))
	for i, p := range peers {
		out[i] = p.FD()
	}
	return out
}

func TestConnections_InsertKeepsOrder(t *testing.T) {
	peers := newPeers(t, 3)
	c := server.NewConnections()
	for _, p := range peers {
		require.NoError(t, c.Insert(p))
	}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, fds(peers...), c.Snapshot())
	assert.True(t, c.Contains(peers[1].FD()))
}

func TestConnections_InsertRejects(t *testing.T) {
	peers := newPeers(t, 1)
	c := server.NewConnections()
	require.NoError(t, c.Insert(peers[0]))

	dup := transport.NewHandle(peers[0].FD())
	defer dup.Detach()
	err := c.Insert(server.NewPeer(dup, nil, 9))
	assert.ErrorIs(t, err, api.ErrAlreadyExists)
	assert.ErrorIs(t, c.Insert(server.NewPeer(transport.NewHandle(-1), nil, 10)), api.ErrInvalidArgument)
	assert.ErrorIs(t, c.Insert(nil), api.ErrInvalidArgument)
	assert.Equal(t, 1, c.Len())
}

func TestConnections_MaxFD(t *testing.T) {
	peers := newPeers(t, 2)
	c := server.NewConnections()
	assert.Equal(t, 3, c.MaxFD(3))
	for _, p := range peers {
		require.NoError(t, c.Insert(p))
	}
	want := peers[0].FD()
	if peers[1].FD() > want {
		want = peers[1].FD()
	}
	assert.Equal(t, want, c.MaxFD(0))
	assert.Equal(t, 1<<20, c.MaxFD(1<<20))
}

func TestConnections_ForEachReadyRemovesWithoutSkipping(t *testing.T) {
	peers := newPeers(t, 5)
	c := server.NewConnections()
	for _, p := range peers {
		require.NoError(t, c.Insert(p))
	}
	dropped := map[int]bool{peers[1].FD(): true, peers[2].FD(): true, peers[4].FD(): true}
	want := fds(peers...)
	kept := fds(peers[0], peers[3])

	var visited []int
	err := c.ForEachReady(
		func(int) bool { return true },
		func(p *server.Peer) (bool, error) {
			visited = append(visited, p.FD())
			return !dropped[p.FD()], nil
		},
	)
	require.NoError(t, err)

	// every peer visited once, in order
	assert.Equal(t, want, visited)
	assert.Equal(t, kept, c.Snapshot())
	assert.False(t, peers[1].Handle().Valid())
	assert.True(t, peers[0].Handle().Valid())
	assert.False(t, c.Contains(visited[1]))
}

func TestConnections_ForEachReadyOnlyReady(t *testing.T) {
	peers := newPeers(t, 3)
	c := server.NewConnections()
	for _, p := range peers {
		require.NoError(t, c.Insert(p))
	}
	var visited []int
	err := c.ForEachReady(
		func(fd int) bool { return fd == peers[1].FD() },
		func(p *server.Peer) (bool, error) {
			visited = append(visited, p.FD())
			return true, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, fds(peers[1]), visited)
	assert.Equal(t, fds(peers...), c.Snapshot())
}

func TestConnections_ForEachReadyStopsOnError(t *testing.T) {
	peers := newPeers(t, 3)
	c := server.NewConnections()
	for _, p := range peers {
		require.NoError(t, c.Insert(p))
	}
	boom := errors.New("boom")
	var visited int
	err := c.ForEachReady(
		func(int) bool { return true },
		func(p *server.Peer) (bool, error) {
			visited++
			return true, boom
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, visited)
	assert.Equal(t, fds(peers...), c.Snapshot())
}

func TestConnections_Remove(t *testing.T) {
	peers := newPeers(t, 3)
	c := server.NewConnections()
	for _, p := range peers {
		require.NoError(t, c.Insert(p))
	}
	fd := peers[1].FD()
	assert.True(t, c.Remove(fd))
	assert.False(t, c.Remove(fd))
	assert.Equal(t, fds(peers[0], peers[2]), c.Snapshot())
	assert.False(t, peers[1].Handle().Valid())
}

func TestConnections_Close(t *testing.T) {
	peers := newPeers(t, 2)
	c := server.NewConnections()
	for _, p := range peers {
		require.NoError(t, c.Insert(p))
	}
	require.NoError(t, c.Close())
	assert.Zero(t, c.Len())
	for _, p := range peers {
		assert.False(t, p.Handle().Valid())
	}
	require.NoError(t, c.Close())
}
