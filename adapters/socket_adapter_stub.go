//go:build !linux
// +build !linux

// File: adapters/socket_adapter_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for unsupported platforms.

package adapters

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/momentics/hioload-rdp/api"
)

// NewSocketAdapter returns an error for unsupported platforms.
func NewSocketAdapter(fd int, closeOnDestroy bool, log hclog.Logger) (api.StreamController, error) {
	return nil, errors.New("adapters: this platform is not supported")
}
