// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Transport kinds shared by the servers and the line client.

package api

// TransportKind selects between stream and datagram sockets.
type TransportKind int

const (
	TransportTCP TransportKind = iota
	TransportUDP
)

func (k TransportKind) String() string {
	switch k {
	case TransportTCP:
		return "TCP"
	case TransportUDP:
		return "UDP"
	default:
		return "unknown"
	}
}
