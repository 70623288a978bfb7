// Package console writes the plain-text lines the tool prints on stdout.
// Each line is emitted with a single Write call.
package console

import (
	"bytes"
	"io"
	"sync"
)

// Printer formats the observable output lines.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

func (p *Printer) write(parts ...[]byte) {
	var b bytes.Buffer
	for _, part := range parts {
		b.Write(part)
	}
	b.WriteByte('\n')
	p.mu.Lock()
	_, _ = p.w.Write(b.Bytes())
	p.mu.Unlock()
}

// Line prints s verbatim.
func (p *Printer) Line(s string) { p.write([]byte(s)) }

// StartingServer prints "Starting <kind> server on port: <port> ... ".
func (p *Printer) StartingServer(kind, port string) {
	p.write([]byte("Starting "+kind+" server on port: "), []byte(port), []byte(" ... "))
}

// ConnectingClient prints "Connecting <kind> client to port: <port> ... ".
func (p *Printer) ConnectingClient(kind, port string) {
	p.write([]byte("Connecting "+kind+" client to port: "), []byte(port), []byte(" ... "))
}

// NewConnection prints the accepted-connection notice.
func (p *Printer) NewConnection() { p.Line("Received new connection from client! ") }

// ClosingConnection prints the peer-closed notice.
func (p *Printer) ClosingConnection() { p.Line("Closing client connection...") }

// Message prints "Received Msg: `<msg>'". The payload is treated as a C
// string: output stops at the first NUL byte.
func (p *Printer) Message(msg []byte) {
	p.write([]byte("Received Msg: `"), CString(msg), []byte("'"))
}

// Sending prints "Sending: `<line>' ...".
func (p *Printer) Sending(line []byte) {
	p.write([]byte("Sending: `"), line, []byte("' ..."))
}

// CaughtException prints the fatal diagnostic for err.
func (p *Printer) CaughtException(err error) {
	p.Line("Caught Exception: " + err.Error())
}

// Usage prints the two-line usage text.
func (p *Printer) Usage(program string) {
	p.Line("Usage: " + program + " MODE PORT")
	p.Line("MODE is u, t, U, or T.")
}

// CString truncates b at its first NUL byte.
func CString(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
