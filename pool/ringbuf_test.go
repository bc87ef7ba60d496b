package pool_test

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-rdp/pool"
)

func peekAll(r *pool.ByteRing) []byte {
	first, second := r.Peek()
	out := append([]byte{}, first...)
	return append(out, second...)
}

func TestByteRingRoundTrip(t *testing.T) {
	r := pool.NewByteRing(16)
	if !r.Write([]byte("hello")) {
		t.Fatal("append failed with free space")
	}
	if r.Used() != 5 {
		t.Fatalf("used = %d, want 5", r.Used())
	}
	if got := peekAll(r); !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("peek = %q, want %q", got, "hello")
	}
	r.CommitRead(2)
	if got := peekAll(r); !bytes.Equal(got, []byte("llo")) {
		t.Fatalf("peek after commit = %q, want %q", got, "llo")
	}
}

func TestByteRingWraparound(t *testing.T) {
	r := pool.NewByteRing(8)
	if !r.Write([]byte("abcdef")) {
		t.Fatal("first append failed")
	}
	r.CommitRead(5)
	// Head is at 5; this append wraps past the end of the store.
	if !r.Write([]byte("ghijk")) {
		t.Fatal("wrapping append failed")
	}
	first, second := r.Peek()
	if second == nil {
		t.Fatal("expected two spans after wraparound")
	}
	if len(first)+len(second) != r.Used() {
		t.Fatalf("span total %d != used %d", len(first)+len(second), r.Used())
	}
	if got := peekAll(r); !bytes.Equal(got, []byte("fghijk")) {
		t.Fatalf("peek = %q, want %q", got, "fghijk")
	}
}

func TestByteRingCapacity(t *testing.T) {
	r := pool.NewByteRing(4)
	if !r.Write([]byte("abc")) {
		t.Fatal("append within capacity failed")
	}
	if r.Write([]byte("de")) {
		t.Fatal("append beyond capacity succeeded")
	}
	// A rejected append must leave the ring untouched.
	if got := peekAll(r); !bytes.Equal(got, []byte("abc")) {
		t.Fatalf("peek = %q, want %q", got, "abc")
	}
	if r.Free() != 1 {
		t.Fatalf("free = %d, want 1", r.Free())
	}
}

func TestByteRingZeroLengthAppend(t *testing.T) {
	r := pool.NewByteRing(4)
	if !r.Write(nil) {
		t.Fatal("nil append should succeed")
	}
	if !r.Write([]byte{}) {
		t.Fatal("empty append should succeed")
	}
	if r.Used() != 0 {
		t.Fatalf("used = %d after no-op appends", r.Used())
	}
}

func TestByteRingCommitClamps(t *testing.T) {
	r := pool.NewByteRing(8)
	r.Write([]byte("abc"))
	r.CommitRead(100)
	if r.Used() != 0 {
		t.Fatalf("used = %d after over-commit, want 0", r.Used())
	}
	r.CommitRead(-1)
	if r.Used() != 0 {
		t.Fatal("negative commit mutated the ring")
	}
}

func TestByteRingInterleaved(t *testing.T) {
	r := pool.NewByteRing(8)
	var want []byte
	var drained []byte

	push := func(p []byte) {
		if !r.Write(p) {
			t.Fatalf("append %q failed", p)
		}
		want = append(want, p...)
	}
	pull := func(n int) {
		got := peekAll(r)
		if n > len(got) {
			n = len(got)
		}
		drained = append(drained, got[:n]...)
		r.CommitRead(n)
	}

	push([]byte("ab"))
	pull(1)
	push([]byte("cdef"))
	pull(3)
	push([]byte("ghij"))
	pull(100)

	drained = append(drained, peekAll(r)...)
	if !bytes.Equal(drained, want) {
		t.Fatalf("drained %q, want %q", drained, want)
	}
}

func TestBytePoolRecycle(t *testing.T) {
	p := pool.NewBytePool(128)
	buf := p.GetBuffer()
	if len(buf) != 128 {
		t.Fatalf("buffer len = %d, want 128", len(buf))
	}
	p.PutBuffer(buf)
	// A foreign-size buffer must be dropped, not recycled.
	p.PutBuffer(make([]byte, 64))
	again := p.GetBuffer()
	if len(again) != 128 {
		t.Fatalf("recycled buffer len = %d, want 128", len(again))
	}
}
