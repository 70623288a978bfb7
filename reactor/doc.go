// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness primitive the servers multiplex on:
// a per-iteration readiness set waited on with poll(2), and a waker that lets
// another goroutine interrupt a blocked wait.
package reactor
