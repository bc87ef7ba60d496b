// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool hands out fixed-size byte slices for read loops, recycling them
// through a sync.Pool.
type BytePool struct {
	size int
	pool sync.Pool
}

// NewBytePool creates a pool of buffers of the given size.
func NewBytePool(size int) *BytePool {
	b := &BytePool{size: size}
	b.pool.New = func() any { return make([]byte, size) }
	return b
}

// GetBuffer returns a buffer from the pool.
func (b *BytePool) GetBuffer() []byte {
	return b.pool.Get().([]byte)
}

// PutBuffer returns a buffer to the pool. Buffers of a foreign size are
// dropped for the GC to collect.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	b.pool.Put(buf[:b.size])
}

// Size returns the buffer size handed out by this pool.
func (b *BytePool) Size() int { return b.size }
