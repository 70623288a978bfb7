// File: server/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package server implements the receiving side of the tool.
//
// TCPServer is a single-goroutine multiplexing server: one readiness wait
// covers the listening socket and every accepted peer, new peers are
// accepted into an ordered connection set, and every read is printed as one
// message. UDPServer prints every datagram it receives.
//
// Both servers stop when the context passed to Serve is cancelled, or when
// Shutdown is called, closing every descriptor they own.
package server
