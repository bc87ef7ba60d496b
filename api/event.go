// File: api/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Event is a waitable readiness handle. Socket-backed events are signaled
// by the kernel on read, accept and close activity; manual events are
// signaled explicitly (abort/cancellation handles).
type Event interface {
	// Fd exposes the pollable descriptor behind the event so it can be
	// combined into a multi-source wait set.
	Fd() int

	// Wait blocks up to timeoutMs (0 = forever) until the event is
	// signaled. A negative timeout probes the current state without
	// blocking. Returns (false, nil) on timeout; interruption is retried
	// internally.
	Wait(timeoutMs int) (bool, error)

	// Reset clears a pending signal. Must be invoked before the operation
	// whose completion the event reports, so a signal raised concurrently
	// is not lost.
	Reset() error

	// Close releases the event's resources.
	Close() error
}
