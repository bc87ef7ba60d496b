//go:build linux
// +build linux

// File: reactor/event_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux poll(2)/eventfd(2)-based readiness implementation.

package reactor

import (
	"fmt"
	"unsafe"

	"github.com/momentics/hioload-rdp/api"
	"golang.org/x/sys/unix"
)

// socketEvent reports readiness of a socket descriptor. The descriptor is
// owned by the filter that created the event, not by the event itself.
type socketEvent struct {
	fd int
}

// NewSocketEvent creates a readiness event for fd, signaled on readable
// data, incoming connections and peer close.
func NewSocketEvent(fd int) (api.Event, error) {
	if fd < 0 {
		return nil, fmt.Errorf("reactor: invalid descriptor %d", fd)
	}
	return &socketEvent{fd: fd}, nil
}

func (e *socketEvent) Fd() int { return e.fd }

// Wait polls for read/close activity up to timeoutMs (0 = forever).
func (e *socketEvent) Wait(timeoutMs int) (bool, error) {
	return pollOne(e.fd, unix.POLLIN|unix.POLLRDHUP, timeoutMs)
}

// Reset is a no-op: level-triggered readiness cannot lose a signal raised
// between the reset and the read it precedes.
func (e *socketEvent) Reset() error { return nil }

// Close releases nothing; the descriptor belongs to the owning filter.
func (e *socketEvent) Close() error { return nil }

// manualEvent is an eventfd-backed, manually reset event.
type manualEvent struct {
	fd int
}

// NewManualEvent creates an unsignaled manual event.
func NewManualEvent() (ManualEvent, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("reactor: eventfd: %w", err)
	}
	return &manualEvent{fd: fd}, nil
}

func (e *manualEvent) Fd() int { return e.fd }

// Set signals the event. Idempotent.
func (e *manualEvent) Set() error {
	var buf [8]byte
	*(*uint64)(unsafe.Pointer(&buf[0])) = 1
	for {
		_, err := unix.Write(e.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return nil // counter saturated, already signaled
		}
		return err
	}
}

// Reset consumes any pending signal.
func (e *manualEvent) Reset() error {
	buf := make([]byte, 8)
	for {
		_, err := unix.Read(e.fd, buf)
		switch err {
		case nil:
			continue
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return nil
		default:
			return err
		}
	}
}

// Wait blocks until Set or timeout.
func (e *manualEvent) Wait(timeoutMs int) (bool, error) {
	return pollOne(e.fd, unix.POLLIN, timeoutMs)
}

// Close releases the eventfd.
func (e *manualEvent) Close() error {
	return unix.Close(e.fd)
}

// pollOne waits for events on a single descriptor, retrying on EINTR.
// timeoutMs 0 waits forever, mirroring the filter wait contract; a
// negative timeout probes without blocking.
func pollOne(fd int, events int16, timeoutMs int) (bool, error) {
	timeout := timeoutMs
	if timeout == 0 {
		timeout = -1
	} else if timeout < 0 {
		timeout = 0
	}
	pollset := []unix.PollFd{{Fd: int32(fd), Events: events}}
	for {
		n, err := unix.Poll(pollset, timeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("reactor: poll: %w", err)
		}
		if n == 0 {
			return false, nil
		}
		return true, nil
	}
}

// Wait blocks up to timeoutMs (0 = forever) until fd is readable
// (forWrite=false) or writable (forWrite=true). Returns false on timeout.
func Wait(fd int, forWrite bool, timeoutMs int) (bool, error) {
	events := int16(unix.POLLIN)
	if forWrite {
		events = unix.POLLOUT
	}
	return pollOne(fd, events, timeoutMs)
}

// WaitConnect performs the dual wait of a timeout-bounded connect: it
// suspends on the connecting socket's write/connect/close readiness and
// the external abort handle simultaneously, resuming on whichever fires
// first. The abort handle takes precedence when both are ready.
func WaitConnect(sockFd int, abort api.Event, timeoutMs int) (ConnectOutcome, error) {
	timeout := timeoutMs
	if timeout == 0 {
		timeout = -1
	}
	for {
		pollset := []unix.PollFd{
			{Fd: int32(abort.Fd()), Events: unix.POLLIN},
			{Fd: int32(sockFd), Events: unix.POLLOUT},
		}
		n, err := unix.Poll(pollset, timeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return OutcomeTimeout, fmt.Errorf("reactor: poll: %w", err)
		}
		if n == 0 {
			return OutcomeTimeout, nil
		}
		if pollset[0].Revents != 0 {
			return OutcomeAbort, nil
		}
		return OutcomeReady, nil
	}
}
