// File: api/layer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TransportLayer is the abstract contract the protocol core programs
// against. Concrete backends (TCP over a connected descriptor being the
// canonical one) own their descriptor and readiness event for exactly the
// layer's lifetime.

package api

// TransportLayer exposes the five transport operations.
type TransportLayer interface {
	// Read fills p. Returns io.EOF on orderly close and ErrWouldBlock on
	// a transient condition.
	Read(p []byte) (int, error)

	// Write sends p with the same retry signaling as Read.
	Write(p []byte) (int, error)

	// Close releases the descriptor and its readiness event.
	Close() error

	// Wait blocks until the layer is readable (waitWrite=false) or
	// writable (waitWrite=true), up to timeoutMs (0 = forever). Returns
	// false on timeout.
	Wait(waitWrite bool, timeoutMs int) (bool, error)

	// Event returns the layer's readiness handle.
	Event() Event
}
