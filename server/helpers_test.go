//go:build linux || darwin

package server_test

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-net/server"
)

const (
	waitFor = 5 * time.Second
	tick    = 5 * time.Millisecond
)

// syncBuffer collects output written by the loop goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Lines() []string {
	s := strings.TrimSuffix(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (b *syncBuffer) Count(line string) int {
	var n int
	for _, l := range b.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

func waitLines(t *testing.T, out *syncBuffer, line string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return out.Count(line) >= n }, waitFor, tick,
		"waiting for %d x %q, output:\n%s", n, line, out.String())
}

type tcpHarness struct {
	srv  *server.TCPServer
	out  *syncBuffer
	errc chan error
}

func startTCP(t *testing.T, opts ...server.ServerOption) *tcpHarness {
	t.Helper()
	h := &tcpHarness{out: &syncBuffer{}, errc: make(chan error, 1)}
	opts = append([]server.ServerOption{server.WithHost("127.0.0.1"), server.WithOutput(h.out)}, opts...)
	h.srv = server.NewTCPServer("0", opts...)
	require.NoError(t, h.srv.Open(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.errc <- h.srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.errc:
		case <-time.After(waitFor):
			t.Error("server did not stop")
		}
	})
	return h
}

func (h *tcpHarness) dial(t *testing.T) *net.TCPConn {
	t.Helper()
	c, err := net.DialTimeout("tcp", h.srv.Addr().String(), waitFor)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c.(*net.TCPConn)
}

func (h *tcpHarness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.errc:
		h.errc <- err
		return err
	case <-time.After(waitFor):
		t.Fatal("server did not stop")
		return nil
	}
}
