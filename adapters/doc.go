// File: adapters/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package adapters implements the socket filter chain: the raw socket
// adapter mapping stream calls onto a non-blocking descriptor, and the
// buffered adapter that makes writes non-blocking by queuing unsent bytes
// in a ring buffer. Both implement api.Stream; chains compose bottom-up
// without any filter assuming the concrete type of its neighbor.
package adapters
