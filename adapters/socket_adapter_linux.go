//go:build linux
// +build linux

// File: adapters/socket_adapter_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw socket adapter: the thinnest filter, mapping stream reads and writes
// directly onto a non-blocking descriptor and classifying errno into the
// retry protocol.

package adapters

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/momentics/hioload-rdp/api"
	"github.com/momentics/hioload-rdp/reactor"
	"golang.org/x/sys/unix"
)

// SocketAdapter owns one socket descriptor and its readiness event. Once
// the descriptor is non-blocking, EAGAIN-class errors are retry
// conditions, never failures.
type SocketAdapter struct {
	fd             int
	event          api.Event
	state          retryState
	closeOnDestroy bool
	log            hclog.Logger
}

var _ api.StreamController = (*SocketAdapter)(nil)

// NewSocketAdapter wraps fd. The adapter creates the readiness event and
// switches the descriptor to non-blocking mode. closeOnDestroy controls
// whether Close performs an orderly shutdown and releases fd.
func NewSocketAdapter(fd int, closeOnDestroy bool, log hclog.Logger) (*SocketAdapter, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	a := &SocketAdapter{fd: -1, log: log.Named("socket")}
	if err := a.init(fd, closeOnDestroy); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *SocketAdapter) init(fd int, closeOnDestroy bool) error {
	ev, err := reactor.NewSocketEvent(fd)
	if err != nil {
		return err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = ev.Close()
		return fmt.Errorf("adapters: set nonblock: %w", err)
	}
	a.fd = fd
	a.event = ev
	a.closeOnDestroy = closeOnDestroy
	a.state = stateIdle
	return nil
}

// uninit releases the current binding: orderly shutdown plus close when
// close-on-destroy is set, and always the readiness event.
func (a *SocketAdapter) uninit() {
	if a.fd >= 0 && a.closeOnDestroy {
		_ = unix.Shutdown(a.fd, unix.SHUT_RDWR)
		_ = unix.Close(a.fd)
	}
	if a.event != nil {
		_ = a.event.Close()
		a.event = nil
	}
	a.fd = -1
}

// transient reports whether errno is a retry condition.
func transient(errno error) bool {
	switch errno {
	case unix.EAGAIN, unix.EINTR, unix.EINPROGRESS, unix.EALREADY:
		return true
	default:
		return false
	}
}

// Write sends p on the descriptor. Nil input is a no-op.
func (a *SocketAdapter) Write(p []byte) (int, error) {
	if p == nil {
		return 0, nil
	}
	if a.fd < 0 {
		return 0, api.ErrStreamClosed
	}
	n, err := unix.Write(a.fd, p)
	if err == nil && n >= 0 {
		a.state = stateIdle
		return n, nil
	}
	if transient(err) {
		a.state = stateRetryWrite
		return 0, api.ErrWouldBlock
	}
	a.state = stateFatal
	return 0, fmt.Errorf("adapters: socket write: %w", err)
}

// Read fills p from the descriptor. The readiness event is reset before
// the recv so a signal raised during or after the call is not lost. A
// zero-byte result is strictly end-of-stream.
func (a *SocketAdapter) Read(p []byte) (int, error) {
	if p == nil {
		return 0, nil
	}
	if a.fd < 0 {
		return 0, api.ErrStreamClosed
	}
	_ = a.event.Reset()
	n, err := unix.Read(a.fd, p)
	if err == nil {
		if n == 0 {
			a.state = stateIdle
			return 0, io.EOF
		}
		a.state = stateIdle
		return n, nil
	}
	if transient(err) {
		a.state = stateRetryRead
		return 0, api.ErrWouldBlock
	}
	a.state = stateFatal
	return 0, fmt.Errorf("adapters: socket read: %w", err)
}

// Close releases the binding per the close-on-destroy flag.
func (a *SocketAdapter) Close() error {
	a.uninit()
	return nil
}

func (a *SocketAdapter) ShouldRetry() bool  { return a.state.shouldRetry() }
func (a *SocketAdapter) ReadBlocked() bool  { return a.state == stateRetryRead }
func (a *SocketAdapter) WriteBlocked() bool { return a.state == stateRetryWrite }

// Event returns the readiness handle bound to the descriptor.
func (a *SocketAdapter) Event() api.Event { return a.event }

// WaitReadable blocks up to timeoutMs (0 = forever) for readable data.
func (a *SocketAdapter) WaitReadable(timeoutMs int) error {
	ready, err := reactor.Wait(a.fd, false, timeoutMs)
	if err != nil {
		return err
	}
	if !ready {
		return api.ErrTimeout
	}
	return nil
}

// WaitWritable blocks up to timeoutMs (0 = forever) for write readiness.
func (a *SocketAdapter) WaitWritable(timeoutMs int) error {
	ready, err := reactor.Wait(a.fd, true, timeoutMs)
	if err != nil {
		return err
	}
	if !ready {
		return api.ErrTimeout
	}
	return nil
}

// Fd returns the underlying descriptor.
func (a *SocketAdapter) Fd() int { return a.fd }

// SetFd uninitializes the previous binding before adopting fd, so the old
// descriptor and event are never shared with the new registration.
func (a *SocketAdapter) SetFd(fd int) error {
	closeOnDestroy := a.closeOnDestroy
	a.uninit()
	return a.init(fd, closeOnDestroy)
}

// SetBlocking switches the descriptor's blocking mode. Callers restoring
// blocking semantics take responsibility for the retry protocol.
func (a *SocketAdapter) SetBlocking(blocking bool) error {
	return unix.SetNonblock(a.fd, !blocking)
}

func (a *SocketAdapter) CloseOnDestroy() bool     { return a.closeOnDestroy }
func (a *SocketAdapter) SetCloseOnDestroy(c bool) { a.closeOnDestroy = c }
