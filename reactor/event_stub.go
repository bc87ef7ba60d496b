//go:build !linux
// +build !linux

// File: reactor/event_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"errors"

	"github.com/momentics/hioload-rdp/api"
)

var errUnsupported = errors.New("reactor: this platform is not supported")

// NewSocketEvent returns an error for unsupported platforms.
func NewSocketEvent(fd int) (api.Event, error) {
	return nil, errUnsupported
}

// NewManualEvent returns an error for unsupported platforms.
func NewManualEvent() (ManualEvent, error) {
	return nil, errUnsupported
}

// Wait returns an error for unsupported platforms.
func Wait(fd int, forWrite bool, timeoutMs int) (bool, error) {
	return false, errUnsupported
}

// WaitConnect returns an error for unsupported platforms.
func WaitConnect(sockFd int, abort api.Event, timeoutMs int) (ConnectOutcome, error) {
	return OutcomeTimeout, errUnsupported
}
