// File: adapters/buffered_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffered socket adapter: absorbs writes into a fixed ring buffer and
// drains opportunistically to the stream below, so the caller never blocks
// on a slow wire. Unflushed bytes stay queued across calls; delivery order
// is strictly FIFO.

package adapters

import (
	"errors"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
	"github.com/momentics/hioload-rdp/api"
	"github.com/momentics/hioload-rdp/pool"
)

var (
	xmitQueuedBytes  = metrics.NewCounter("hioload_rdp_xmit_queued_bytes_total")
	xmitFlushedBytes = metrics.NewCounter("hioload_rdp_xmit_flushed_bytes_total")
)

// DefaultXmitBufferSize is the transmit ring capacity used when the caller
// passes 0.
const DefaultXmitBufferSize = 0x10000

// BufferedAdapter wraps any api.Stream. It owns only its ring buffer; the
// wrapped stream's lifetime belongs to that stream's owner.
type BufferedAdapter struct {
	next         api.Stream
	ring         *pool.ByteRing
	readBlocked  bool
	writeBlocked bool
	fatal        bool
}

var _ api.Stream = (*BufferedAdapter)(nil)

// NewBufferedAdapter stacks a buffered filter on top of next.
func NewBufferedAdapter(next api.Stream, capacity int) *BufferedAdapter {
	if capacity <= 0 {
		capacity = DefaultXmitBufferSize
	}
	return &BufferedAdapter{
		next: next,
		ring: pool.NewByteRing(capacity),
	}
}

// Write queues p and drains as much of the ring as the lower stream
// accepts. A full ring is fatal. When the lower stream reports
// write-blocked, the unflushed remainder stays queued and the call still
// succeeds; it is delivered by a later Write or Flush.
func (a *BufferedAdapter) Write(p []byte) (int, error) {
	if a.fatal {
		return 0, api.ErrStreamClosed
	}
	a.writeBlocked = false

	// Extra bytes are appended before draining; this keeps partial-drain
	// bookkeeping in one place at the cost of one queue pass.
	if len(p) > 0 {
		if !a.ring.Write(p) {
			return 0, api.ErrBufferFull
		}
		xmitQueuedBytes.Add(len(p))
	}
	if err := a.drain(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// drain pushes queued spans downstream, committing only bytes actually
// accepted.
func (a *BufferedAdapter) drain() error {
	committed := 0
	first, second := a.ring.Peek()
	for _, chunk := range [][]byte{first, second} {
		for len(chunk) > 0 {
			n, err := a.next.Write(chunk)
			if err != nil {
				if !a.next.ShouldRetry() {
					a.fatal = true
					a.commit(committed)
					return fmt.Errorf("adapters: buffered drain: %w", err)
				}
				if a.next.WriteBlocked() {
					a.writeBlocked = true
					a.commit(committed)
					return nil
				}
				// Interrupted but not write-blocked: retry immediately.
				continue
			}
			committed += n
			chunk = chunk[n:]
		}
	}
	a.commit(committed)
	return nil
}

// commit releases drained bytes from the ring and counts them as flushed.
func (a *BufferedAdapter) commit(n int) {
	if n <= 0 {
		return
	}
	a.ring.CommitRead(n)
	xmitFlushedBytes.Add(n)
}

// Read delegates to the lower stream and propagates its retry state.
func (a *BufferedAdapter) Read(p []byte) (int, error) {
	if a.fatal {
		return 0, api.ErrStreamClosed
	}
	a.readBlocked = false
	n, err := a.next.Read(p)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, api.ErrWouldBlock) {
		if a.next.ReadBlocked() {
			a.readBlocked = true
		}
		return 0, api.ErrWouldBlock
	}
	if errors.Is(err, io.EOF) {
		return 0, io.EOF
	}
	a.fatal = true
	return 0, err
}

// Flush drains any queued bytes without appending new ones.
func (a *BufferedAdapter) Flush() error {
	if a.ring == nil || a.ring.Used() == 0 {
		return nil
	}
	_, err := a.Write(nil)
	return err
}

// PendingWriteBytes reports the number of unflushed bytes.
func (a *BufferedAdapter) PendingWriteBytes() int {
	if a.ring == nil {
		return 0
	}
	return a.ring.Used()
}

// Close releases the ring buffer only; adapters in a chain do not own
// each other.
func (a *BufferedAdapter) Close() error {
	a.ring = nil
	a.fatal = true
	return nil
}

func (a *BufferedAdapter) ShouldRetry() bool {
	return !a.fatal && (a.readBlocked || a.writeBlocked)
}

func (a *BufferedAdapter) ReadBlocked() bool  { return a.readBlocked }
func (a *BufferedAdapter) WriteBlocked() bool { return a.writeBlocked }

// Control operations the adapter does not handle itself pass through to
// the lower stream unchanged.

func (a *BufferedAdapter) Event() api.Event { return a.next.Event() }

func (a *BufferedAdapter) WaitReadable(timeoutMs int) error {
	return a.next.WaitReadable(timeoutMs)
}

func (a *BufferedAdapter) WaitWritable(timeoutMs int) error {
	return a.next.WaitWritable(timeoutMs)
}

func (a *BufferedAdapter) Fd() int { return a.next.Fd() }
