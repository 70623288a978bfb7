// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport owns OS socket descriptors and the system calls made on
// them: creation, bind/listen/accept, stream and datagram I/O, and address
// resolution. Every failing call is reported as an *api.OpError naming it.
package transport
