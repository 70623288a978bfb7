//go:build linux || darwin

package client_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/client"
)

func portOf(t *testing.T, a net.Addr) string {
	t.Helper()
	_, port, err := net.SplitHostPort(a.String())
	require.NoError(t, err)
	return port
}

func TestRun_TCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := portOf(t, ln.Addr())

	var g errgroup.Group
	var received []byte
	g.Go(func() error {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		defer c.Close()
		received, err = io.ReadAll(c)
		return err
	})

	var out bytes.Buffer
	in := strings.NewReader("ping\npong\ntrailing")
	require.NoError(t, client.Run(context.Background(), api.TransportTCP, port, in, &out, client.WithHost("127.0.0.1")))
	require.NoError(t, g.Wait())

	assert.Equal(t, "pingpong", string(received))
	assert.Equal(t, "Connecting TCP client to port: "+port+" ... \n"+
		"Sending: `ping' ...\n"+
		"Sending: `pong' ...\n", out.String())
}

func TestRun_UDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()
	port := portOf(t, pc.LocalAddr())

	var out bytes.Buffer
	in := strings.NewReader("hello\n\nworld\n")
	require.NoError(t, client.Run(context.Background(), api.TransportUDP, port, in, &out))

	assert.Equal(t, "Sending: `hello' ...\nSending: `' ...\nSending: `world' ...\n", out.String())

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 64)
	var got []string
	for range 3 {
		n, _, err := pc.ReadFrom(buf)
		require.NoError(t, err)
		got = append(got, string(buf[:n]))
	}
	assert.Equal(t, []string{"hello", "", "world"}, got)
}

func TestRun_EmptyInput(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	var out bytes.Buffer
	require.NoError(t, client.Run(context.Background(), api.TransportUDP, portOf(t, pc.LocalAddr()), strings.NewReader("no newline"), &out))
	assert.Empty(t, out.String())
}

func TestRun_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	var out bytes.Buffer
	err = client.Run(context.Background(), api.TransportTCP, strconv.Itoa(port), strings.NewReader("x\n"), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrConnectFailed)
	assert.True(t, strings.HasPrefix(err.Error(), "connect() failed: "), err.Error())
	assert.Equal(t, "Connecting TCP client to port: "+strconv.Itoa(port)+" ... \n", out.String())
}

func TestRun_Failures(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		err := client.Run(context.Background(), api.TransportUDP, "no-such-service-xyz", strings.NewReader(""), io.Discard)
		assert.ErrorIs(t, err, api.ErrResolutionFailed)
	})
	t.Run("unknown transport", func(t *testing.T) {
		err := client.Run(context.Background(), api.TransportKind(9), "1", strings.NewReader(""), io.Discard)
		assert.ErrorIs(t, err, api.ErrNotSupported)
	})
}

func TestRun_CancelledBeforeInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := client.Run(ctx, api.TransportUDP, "9", strings.NewReader("x\n"), &out, client.WithHost("127.0.0.1"))
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	for _, kind := range []api.TransportKind{api.TransportTCP, api.TransportUDP} {
		t.Run(kind.String(), func(t *testing.T) {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)
			defer ln.Close()
			go func() {
				if c, err := ln.Accept(); err == nil {
					_, _ = io.Copy(io.Discard, c)
					_ = c.Close()
				}
			}()

			// stdin that never produces a line
			pr, pw := io.Pipe()
			defer pw.Close()

			port := portOf(t, ln.Addr())
			var out bytes.Buffer
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- client.Run(ctx, kind, port, pr, &out, client.WithHost("127.0.0.1"))
			}()

			time.Sleep(100 * time.Millisecond)
			cancel()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("client did not return after cancel")
			}
			assert.NotContains(t, out.String(), "Sending")
		})
	}
}
