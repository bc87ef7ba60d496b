// File: fake/stream.go
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development. The fake stream gives
// tests full control over acceptance limits, retry signaling and fatal
// failures of a lower filter.

package fake

import (
	"io"

	"github.com/momentics/hioload-rdp/api"
)

// Event is an in-memory api.Event with manual signaling.
type Event struct {
	signaled bool
}

func (e *Event) Fd() int { return -1 }

func (e *Event) Wait(timeoutMs int) (bool, error) { return e.signaled, nil }

func (e *Event) Reset() error {
	e.signaled = false
	return nil
}

func (e *Event) Close() error { return nil }

// Set signals the event.
func (e *Event) Set() { e.signaled = true }

// Stream is a scripted api.Stream for testing filters that wrap a lower
// stream. Zero value: accepts every write whole, reads report would-block.
type Stream struct {
	// WriteLimit caps the bytes accepted per Write call; 0 = unlimited.
	WriteLimit int

	written    []byte
	writeCalls int

	blockWrites bool
	writeErr    error

	readQueue [][]byte
	eof       bool

	readBlocked  bool
	writeBlocked bool
	fatal        bool

	event Event
}

var _ api.Stream = (*Stream)(nil)

// NewStream creates a fake stream with default settings.
func NewStream() *Stream {
	return &Stream{}
}

// Write honors the configured failure mode, then accepts up to WriteLimit
// bytes.
func (s *Stream) Write(p []byte) (int, error) {
	if p == nil {
		return 0, nil
	}
	s.writeCalls++
	s.writeBlocked = false
	if s.writeErr != nil {
		s.fatal = true
		return 0, s.writeErr
	}
	if s.blockWrites {
		s.writeBlocked = true
		return 0, api.ErrWouldBlock
	}
	n := len(p)
	if s.WriteLimit > 0 && n > s.WriteLimit {
		n = s.WriteLimit
	}
	s.written = append(s.written, p[:n]...)
	return n, nil
}

// Read pops the next queued chunk, reports EOF when configured, and
// otherwise signals would-block.
func (s *Stream) Read(p []byte) (int, error) {
	s.readBlocked = false
	if len(s.readQueue) > 0 {
		n := copy(p, s.readQueue[0])
		if n == len(s.readQueue[0]) {
			s.readQueue = s.readQueue[1:]
		} else {
			s.readQueue[0] = s.readQueue[0][n:]
		}
		return n, nil
	}
	if s.eof {
		return 0, io.EOF
	}
	s.readBlocked = true
	return 0, api.ErrWouldBlock
}

func (s *Stream) Close() error { return nil }

func (s *Stream) ShouldRetry() bool {
	return !s.fatal && (s.readBlocked || s.writeBlocked)
}

func (s *Stream) ReadBlocked() bool  { return s.readBlocked }
func (s *Stream) WriteBlocked() bool { return s.writeBlocked }

func (s *Stream) Event() api.Event { return &s.event }

func (s *Stream) WaitReadable(timeoutMs int) error { return nil }
func (s *Stream) WaitWritable(timeoutMs int) error { return nil }

func (s *Stream) Fd() int { return -1 }

// SetBlockWrites makes subsequent writes report would-block.
func (s *Stream) SetBlockWrites(block bool) { s.blockWrites = block }

// SetWriteError makes the next write fail fatally.
func (s *Stream) SetWriteError(err error) { s.writeErr = err }

// PushRead queues data for the next Read call.
func (s *Stream) PushRead(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.readQueue = append(s.readQueue, cp)
}

// SetEOF makes reads report orderly end-of-stream once the queue drains.
func (s *Stream) SetEOF() { s.eof = true }

// Written returns everything accepted so far, in order.
func (s *Stream) Written() []byte { return s.written }

// WriteCalls returns the number of Write invocations.
func (s *Stream) WriteCalls() int { return s.writeCalls }
