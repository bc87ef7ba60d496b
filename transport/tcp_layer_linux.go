//go:build linux
// +build linux

// File: transport/tcp_layer_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TCP backend of the api.TransportLayer contract: five operations over a
// connected descriptor obtained from the dialer. The layer owns its
// descriptor and readiness event for exactly its own lifetime.

package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/momentics/hioload-rdp/api"
	"github.com/momentics/hioload-rdp/reactor"
	"golang.org/x/sys/unix"
)

// TCPLayer implements api.TransportLayer over a connected TCP descriptor.
type TCPLayer struct {
	fd    int
	event api.Event
	log   hclog.Logger
}

var _ api.TransportLayer = (*TCPLayer)(nil)

// NewTCPLayer adopts a connected descriptor: creates the readiness event
// registered for read and close activity and switches the descriptor to
// non-blocking mode as a side effect of that registration.
func NewTCPLayer(fd int, log hclog.Logger) (*TCPLayer, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	ev, err := reactor.NewSocketEvent(fd)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = ev.Close()
		return nil, fmt.Errorf("transport: set nonblock: %w", err)
	}
	return &TCPLayer{fd: fd, event: ev, log: log.Named("tcp-layer")}, nil
}

// layerTransient mirrors the adapter errno classification.
func layerTransient(err error) bool {
	switch err {
	case unix.EAGAIN, unix.EINTR, unix.EINPROGRESS, unix.EALREADY:
		return true
	default:
		return false
	}
}

// Read fills p from the socket. The readiness event is reset before the
// recv so a signal raised during the call is not lost. Zero bytes is
// strictly orderly close.
func (l *TCPLayer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	_ = l.event.Reset()
	n, err := unix.Read(l.fd, p)
	if err == nil {
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	if layerTransient(err) {
		return 0, api.ErrWouldBlock
	}
	return 0, fmt.Errorf("transport: layer read: %w", err)
}

// Write sends p with the same retry signaling as Read.
func (l *TCPLayer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.Write(l.fd, p)
	if err == nil {
		return n, nil
	}
	if layerTransient(err) {
		return 0, api.ErrWouldBlock
	}
	return 0, fmt.Errorf("transport: layer write: %w", err)
}

// Close releases the descriptor and the readiness event.
func (l *TCPLayer) Close() error {
	var err error
	if l.fd >= 0 {
		err = unix.Close(l.fd)
		l.fd = -1
	}
	if l.event != nil {
		_ = l.event.Close()
		l.event = nil
	}
	return err
}

// Wait blocks until the socket is readable or writable, up to timeoutMs
// (0 = forever), retrying on interruption.
func (l *TCPLayer) Wait(waitWrite bool, timeoutMs int) (bool, error) {
	return reactor.Wait(l.fd, waitWrite, timeoutMs)
}

// Event returns the layer's readiness handle for external wait sets.
func (l *TCPLayer) Event() api.Event { return l.event }

// Fd exposes the descriptor for callers integrating with raw polling.
func (l *TCPLayer) Fd() int { return l.fd }

// ConnectLayer dials hostname:port through d and wraps the connected
// descriptor in a TCPLayer, re-applying keep-alive for descriptors that
// arrived through paths the dialer does not tune.
func ConnectLayer(ctx context.Context, d *Dialer, hostname string, port int, timeoutMs int) (*TCPLayer, error) {
	fd, err := d.Connect(ctx, hostname, port, timeoutMs)
	if err != nil {
		return nil, err
	}
	SetKeepAliveMode(d.Settings, fd, d.log)

	layer, err := NewTCPLayer(fd, d.log)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return layer, nil
}
