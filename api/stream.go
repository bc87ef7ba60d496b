// File: api/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the layered Stream contract implemented by every socket filter.
// A filter wraps the stream below it and intercepts reads and writes; the
// control operations it does not handle itself are forwarded down the chain.

package api

// Stream is a bidirectional byte-stream filter.
//
// Read and Write never block: a transient condition (would-block,
// interrupted, connect-in-progress) is reported as ErrWouldBlock with the
// adapter's retry state updated, never as a failure. A zero Read with nil
// error never occurs; orderly end-of-stream is io.EOF.
type Stream interface {
	// Read fills p from the stream. Returns io.EOF on orderly close and
	// ErrWouldBlock when the operation should be retried after readiness.
	Read(p []byte) (int, error)

	// Write sends p. A nil p is a no-op returning 0. ErrWouldBlock means
	// the bytes were not accepted and the call should be retried.
	Write(p []byte) (int, error)

	// Close releases the resources owned by this filter. A filter never
	// owns the stream it wraps; chains are torn down outermost-first by
	// their owner.
	Close() error

	// ShouldRetry reports whether the most recent operation failed for a
	// transient reason. Any non-transient failure clears it permanently.
	ShouldRetry() bool

	// ReadBlocked reports that the last read would have blocked.
	ReadBlocked() bool

	// WriteBlocked reports that unsent bytes are waiting for the stream
	// below to become writable.
	WriteBlocked() bool

	// Event returns the readiness handle associated with the stream, for
	// integration into external multi-source waits.
	Event() Event

	// WaitReadable blocks up to timeoutMs (0 = forever) until the stream
	// is readable. Returns ErrTimeout on expiry.
	WaitReadable(timeoutMs int) error

	// WaitWritable blocks up to timeoutMs (0 = forever) until the stream
	// is writable. Returns ErrTimeout on expiry.
	WaitWritable(timeoutMs int) error

	// Fd returns the underlying OS descriptor.
	Fd() int
}

// StreamController extends Stream with descriptor rebinding and blocking
// mode control. Only the lowest filter of a chain implements it natively;
// intermediate filters forward the calls down.
type StreamController interface {
	Stream

	// SetFd releases the current descriptor binding (honoring the
	// close-on-destroy flag) and adopts fd in its place.
	SetFd(fd int) error

	// SetBlocking switches the descriptor between blocking and
	// non-blocking mode.
	SetBlocking(blocking bool) error

	// CloseOnDestroy reports whether Close shuts down and releases the
	// descriptor.
	CloseOnDestroy() bool

	// SetCloseOnDestroy sets the close-on-destroy flag.
	SetCloseOnDestroy(close bool)
}
