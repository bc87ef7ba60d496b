// File: reactor/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package reactor provides the readiness primitives under the socket
// filter chain: poll-backed socket events, manually signaled events for
// abort/cancellation, and bounded single- and dual-source waits.
//
// Socket readiness is level-triggered: an event stays signaled while the
// condition (readable data, half-close, error) persists, so a socket event
// is nothing more than a poll on the descriptor itself. Manual events are
// eventfd-backed on Linux.
package reactor
