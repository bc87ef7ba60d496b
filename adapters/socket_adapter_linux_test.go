//go:build linux
// +build linux

package adapters_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/momentics/hioload-rdp/adapters"
	"github.com/momentics/hioload-rdp/api"
	"golang.org/x/sys/unix"
)

// streamPair returns two connected stream descriptors.
func streamPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return fds[0], fds[1]
}

func TestSocketAdapterRoundTrip(t *testing.T) {
	local, peer := streamPair(t)
	defer unix.Close(peer)

	a, err := adapters.NewSocketAdapter(local, true, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	if n, err := a.Write([]byte("ping")); err != nil || n != 4 {
		t.Fatalf("write = %d, %v", n, err)
	}
	buf := make([]byte, 16)
	n, err := unix.Read(peer, buf)
	if err != nil || !bytes.Equal(buf[:n], []byte("ping")) {
		t.Fatalf("peer read = %q, %v", buf[:n], err)
	}

	if _, err := unix.Write(peer, []byte("pong")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	if err := a.WaitReadable(2000); err != nil {
		t.Fatalf("wait readable: %v", err)
	}
	n, err = a.Read(buf)
	if err != nil || !bytes.Equal(buf[:n], []byte("pong")) {
		t.Fatalf("read = %q, %v", buf[:n], err)
	}
}

func TestSocketAdapterWouldBlock(t *testing.T) {
	local, peer := streamPair(t)
	defer unix.Close(peer)

	a, err := adapters.NewSocketAdapter(local, true, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	buf := make([]byte, 16)
	if _, err := a.Read(buf); !errors.Is(err, api.ErrWouldBlock) {
		t.Fatalf("empty read: %v, want ErrWouldBlock", err)
	}
	if !a.ReadBlocked() || !a.ShouldRetry() {
		t.Fatal("empty read must set the read-retry state")
	}
	if a.WriteBlocked() {
		t.Fatal("read-blocked must not imply write-blocked")
	}

	// A later success clears the retry state.
	if _, err := unix.Write(peer, []byte("x")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	if err := a.WaitReadable(2000); err != nil {
		t.Fatalf("wait readable: %v", err)
	}
	if _, err := a.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if a.ShouldRetry() {
		t.Fatal("retry state must clear after success")
	}
}

func TestSocketAdapterEndOfStream(t *testing.T) {
	local, peer := streamPair(t)

	a, err := adapters.NewSocketAdapter(local, true, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	unix.Close(peer)
	if err := a.WaitReadable(2000); err != nil {
		t.Fatalf("wait readable: %v", err)
	}
	buf := make([]byte, 16)
	if _, err := a.Read(buf); err != io.EOF {
		t.Fatalf("read after peer close: %v, want io.EOF", err)
	}
	if a.ShouldRetry() {
		t.Fatal("end of stream is not a retry condition")
	}
}

func TestSocketAdapterWaitTimeout(t *testing.T) {
	local, peer := streamPair(t)
	defer unix.Close(peer)

	a, err := adapters.NewSocketAdapter(local, true, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	if err := a.WaitReadable(50); !errors.Is(err, api.ErrTimeout) {
		t.Fatalf("wait on silent peer: %v, want ErrTimeout", err)
	}
	// Write readiness is immediate on an idle socket.
	if err := a.WaitWritable(2000); err != nil {
		t.Fatalf("wait writable: %v", err)
	}
}

func TestSocketAdapterEventSignaling(t *testing.T) {
	local, peer := streamPair(t)
	defer unix.Close(peer)

	a, err := adapters.NewSocketAdapter(local, true, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	ev := a.Event()
	if ev == nil {
		t.Fatal("adapter must expose its readiness event")
	}
	if _, err := unix.Write(peer, []byte("wake")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	ready, err := ev.Wait(2000)
	if err != nil || !ready {
		t.Fatalf("event wait = %v, %v; want signaled", ready, err)
	}
}

func TestSocketAdapterRebind(t *testing.T) {
	localA, peerA := streamPair(t)
	localB, peerB := streamPair(t)
	defer unix.Close(peerA)
	defer unix.Close(peerB)

	a, err := adapters.NewSocketAdapter(localA, true, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	if err := a.SetFd(localB); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if a.Fd() != localB {
		t.Fatalf("fd = %d, want %d", a.Fd(), localB)
	}
	// The previous descriptor was released; its peer sees end-of-stream.
	buf := make([]byte, 4)
	if n, err := unix.Read(peerA, buf); err != nil || n != 0 {
		t.Fatalf("old peer read = %d, %v; want orderly close", n, err)
	}
	// The new binding carries traffic.
	if _, err := a.Write([]byte("hi")); err != nil {
		t.Fatalf("write after rebind: %v", err)
	}
	n, err := unix.Read(peerB, buf)
	if err != nil || !bytes.Equal(buf[:n], []byte("hi")) {
		t.Fatalf("new peer read = %q, %v", buf[:n], err)
	}
}

func TestSocketAdapterCloseOnDestroy(t *testing.T) {
	local, peer := streamPair(t)
	defer unix.Close(peer)
	defer unix.Close(local)

	a, err := adapters.NewSocketAdapter(local, false, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if a.CloseOnDestroy() {
		t.Fatal("close-on-destroy must be off as constructed")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// With ownership disabled the descriptor stays usable.
	if _, err := unix.Write(local, []byte("alive")); err != nil {
		t.Fatalf("write on retained fd: %v", err)
	}
}
