// File: pool/ringbuf.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity circular byte queue supporting append, peek as contiguous
// spans, and commit-after-partial-drain, without reallocation. Owned by a
// single filter instance; no internal locking.

package pool

// ByteRing is a fixed-capacity circular byte buffer. The producer appends
// with Write; the consumer observes queued bytes with Peek and releases
// them with CommitRead once they are confirmed flushed downstream.
type ByteRing struct {
	data []byte
	head int // read cursor
	used int // invariant: 0 <= used <= len(data)
}

// NewByteRing allocates a ring of the given capacity.
func NewByteRing(capacity int) *ByteRing {
	if capacity <= 0 {
		panic("pool: ring capacity must be positive")
	}
	return &ByteRing{data: make([]byte, capacity)}
}

// Write appends p to the ring. Returns false, leaving the ring untouched,
// when p does not fit in the free space.
func (r *ByteRing) Write(p []byte) bool {
	if len(p) == 0 {
		return true
	}
	if len(p) > r.Free() {
		return false
	}
	tail := (r.head + r.used) % len(r.data)
	n := copy(r.data[tail:], p)
	if n < len(p) {
		copy(r.data, p[n:])
	}
	r.used += len(p)
	return true
}

// Peek returns the queued bytes as at most two contiguous spans whose
// total length equals Used. The second span is non-nil only when the data
// wraps past the end of the backing store. The spans alias the ring and
// stay valid until the next Write or CommitRead.
func (r *ByteRing) Peek() (first, second []byte) {
	if r.used == 0 {
		return nil, nil
	}
	end := r.head + r.used
	if end <= len(r.data) {
		return r.data[r.head:end], nil
	}
	return r.data[r.head:], r.data[:end-len(r.data)]
}

// CommitRead releases the oldest n queued bytes after they have been
// drained downstream. n larger than Used releases everything.
func (r *ByteRing) CommitRead(n int) {
	if n <= 0 {
		return
	}
	if n > r.used {
		n = r.used
	}
	r.head = (r.head + n) % len(r.data)
	r.used -= n
	if r.used == 0 {
		r.head = 0
	}
}

// Used returns the number of queued bytes.
func (r *ByteRing) Used() int { return r.used }

// Free returns the remaining capacity.
func (r *ByteRing) Free() int { return len(r.data) - r.used }

// Cap returns the fixed capacity.
func (r *ByteRing) Cap() int { return len(r.data) }
