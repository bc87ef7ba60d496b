//go:build linux
// +build linux

package reactor_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-rdp/reactor"
	"golang.org/x/sys/unix"
)

func pair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestManualEventLifecycle(t *testing.T) {
	ev, err := reactor.NewManualEvent()
	if err != nil {
		t.Fatalf("new manual event: %v", err)
	}
	defer ev.Close()

	// Fresh event: a non-blocking probe sees nothing.
	if ready, err := ev.Wait(-1); err != nil || ready {
		t.Fatalf("probe on fresh event = %v, %v", ready, err)
	}

	if err := ev.Set(); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Setting twice must not fail.
	if err := ev.Set(); err != nil {
		t.Fatalf("second set: %v", err)
	}
	if ready, err := ev.Wait(-1); err != nil || !ready {
		t.Fatalf("probe after set = %v, %v; want signaled", ready, err)
	}
	// The signal persists across waits until reset.
	if ready, _ := ev.Wait(100); !ready {
		t.Fatal("signal must persist until reset")
	}

	if err := ev.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ready, _ := ev.Wait(-1); ready {
		t.Fatal("probe after reset must see nothing")
	}
}

func TestManualEventWaitTimeout(t *testing.T) {
	ev, err := reactor.NewManualEvent()
	if err != nil {
		t.Fatalf("new manual event: %v", err)
	}
	defer ev.Close()

	start := time.Now()
	ready, err := ev.Wait(50)
	if err != nil || ready {
		t.Fatalf("wait = %v, %v; want timeout", ready, err)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatal("wait returned before its bound elapsed")
	}
}

func TestSocketEventReadable(t *testing.T) {
	local, peer := pair(t)

	ev, err := reactor.NewSocketEvent(local)
	if err != nil {
		t.Fatalf("new socket event: %v", err)
	}
	defer ev.Close()

	if ready, _ := ev.Wait(-1); ready {
		t.Fatal("idle socket must not report readiness")
	}
	if _, err := unix.Write(peer, []byte("x")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	if ready, err := ev.Wait(2000); err != nil || !ready {
		t.Fatalf("wait = %v, %v; want readable", ready, err)
	}
	// Level-triggered: readiness survives an intervening reset while the
	// data is still unread.
	if err := ev.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ready, _ := ev.Wait(-1); !ready {
		t.Fatal("unread data must keep the event signaled")
	}
}

func TestSocketEventPeerClose(t *testing.T) {
	local, peer := pair(t)

	ev, err := reactor.NewSocketEvent(local)
	if err != nil {
		t.Fatalf("new socket event: %v", err)
	}
	defer ev.Close()

	unix.Close(peer)
	if ready, err := ev.Wait(2000); err != nil || !ready {
		t.Fatalf("wait after peer close = %v, %v; want signaled", ready, err)
	}
}

func TestWaitDirections(t *testing.T) {
	local, peer := pair(t)
	_ = peer

	// An idle stream socket is immediately writable, not readable.
	ready, err := reactor.Wait(local, true, 2000)
	if err != nil || !ready {
		t.Fatalf("write wait = %v, %v; want ready", ready, err)
	}
	ready, err = reactor.Wait(local, false, 50)
	if err != nil || ready {
		t.Fatalf("read wait = %v, %v; want timeout", ready, err)
	}
}

func TestWaitConnectAbortPrecedence(t *testing.T) {
	local, peer := pair(t)
	_ = peer

	abort, err := reactor.NewManualEvent()
	if err != nil {
		t.Fatalf("new manual event: %v", err)
	}
	defer abort.Close()
	if err := abort.Set(); err != nil {
		t.Fatalf("set: %v", err)
	}

	// The socket is already writable, but a signaled abort must win.
	outcome, err := reactor.WaitConnect(local, abort, 2000)
	if err != nil {
		t.Fatalf("wait connect: %v", err)
	}
	if outcome != reactor.OutcomeAbort {
		t.Fatalf("outcome = %v, want %v", outcome, reactor.OutcomeAbort)
	}
}

func TestWaitConnectReady(t *testing.T) {
	local, peer := pair(t)
	_ = peer

	abort, err := reactor.NewManualEvent()
	if err != nil {
		t.Fatalf("new manual event: %v", err)
	}
	defer abort.Close()

	outcome, err := reactor.WaitConnect(local, abort, 2000)
	if err != nil {
		t.Fatalf("wait connect: %v", err)
	}
	if outcome != reactor.OutcomeReady {
		t.Fatalf("outcome = %v, want %v", outcome, reactor.OutcomeReady)
	}
}

func TestConnectOutcomeString(t *testing.T) {
	cases := map[reactor.ConnectOutcome]string{
		reactor.OutcomeReady:   "ready",
		reactor.OutcomeAbort:   "abort",
		reactor.OutcomeTimeout: "timeout",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", outcome, got, want)
		}
	}
}
