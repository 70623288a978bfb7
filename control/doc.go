// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime counters published by the servers and read by tests and
// diagnostics. Safe for concurrent use.
package control
