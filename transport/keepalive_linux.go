//go:build linux
// +build linux

// File: transport/keepalive_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Keep-alive and user-timeout tuning. Keep-alive is a liveness
// optimization, not a correctness requirement: every failure here is
// logged and ignored.

package transport

import (
	"github.com/hashicorp/go-hclog"
	"github.com/momentics/hioload-rdp/api"
	"golang.org/x/sys/unix"
)

// SetKeepAliveMode applies the session's keep-alive configuration to a
// connected descriptor: SO_KEEPALIVE with idle delay, probe interval and
// probe count (zeroed when keep-alive is disabled), plus the TCP
// user-timeout bounding unacknowledged transmissions.
func SetKeepAliveMode(settings *api.Settings, fd int, log hclog.Logger) {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	enable := 0
	if settings.TCPKeepAlive {
		enable = 1
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, enable); err != nil {
		log.Warn("setsockopt SO_KEEPALIVE", "error", err)
	}

	idle, interval, retries := 0, 0, 0
	if settings.TCPKeepAlive {
		idle = int(settings.TCPKeepAliveDelay)
		interval = int(settings.TCPKeepAliveInterval)
		retries = int(settings.TCPKeepAliveRetries)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, idle); err != nil {
		log.Warn("setsockopt TCP_KEEPIDLE", "error", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, retries); err != nil {
		log.Warn("setsockopt TCP_KEEPCNT", "error", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, interval); err != nil {
		log.Warn("setsockopt TCP_KEEPINTVL", "error", err)
	}

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, int(settings.TCPAckTimeout)); err != nil {
		log.Warn("setsockopt TCP_USER_TIMEOUT", "error", err)
	}
}
