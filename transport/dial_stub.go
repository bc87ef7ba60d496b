//go:build !linux
// +build !linux

// File: transport/dial_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stubs for unsupported platforms.

package transport

import (
	"context"

	"github.com/momentics/hioload-rdp/api"
)

func (d *Dialer) connectUDS(path string) (int, error) {
	return -1, d.fail(api.ErrCodeConnectFailed, api.ErrNotSupported)
}

func (d *Dialer) connectVSock(cid uint32, port uint32) (int, error) {
	return -1, d.fail(api.ErrCodeConnectFailed, api.ErrNotSupported)
}

func (d *Dialer) connectHost(ctx context.Context, hostname string, port int, timeoutMs int) (int, error) {
	return -1, d.fail(api.ErrCodeConnectFailed, api.ErrNotSupported)
}
