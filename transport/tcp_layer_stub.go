//go:build !linux
// +build !linux

// File: transport/tcp_layer_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for unsupported platforms.

package transport

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/momentics/hioload-rdp/api"
)

// NewTCPLayer returns an error for unsupported platforms.
func NewTCPLayer(fd int, log hclog.Logger) (api.TransportLayer, error) {
	return nil, errors.New("transport: this platform is not supported")
}

// ConnectLayer returns an error for unsupported platforms.
func ConnectLayer(ctx context.Context, d *Dialer, hostname string, port int, timeoutMs int) (api.TransportLayer, error) {
	return nil, errors.New("transport: this platform is not supported")
}
