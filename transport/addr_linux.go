//go:build linux
// +build linux

// File: transport/addr_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Textual endpoint address helpers for connected descriptors.

package transport

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// AddressToString renders a sockaddr as a textual IP address and reports
// whether it is IPv6. Local domain sockets report the loopback address.
func AddressToString(sa unix.Sockaddr) (string, bool, error) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(a.Addr[:]).String(), false, nil
	case *unix.SockaddrInet6:
		return net.IP(a.Addr[:]).String(), true, nil
	case *unix.SockaddrUnix:
		return "127.0.0.1", false, nil
	default:
		return "", false, fmt.Errorf("transport: unsupported address family %T", sa)
	}
}

// LocalAddress returns the textual address of the descriptor's local
// endpoint, for callers reporting the client's own address.
func LocalAddress(fd int) (string, bool, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", false, fmt.Errorf("transport: getsockname: %w", err)
	}
	return AddressToString(sa)
}

// PeerAddress returns the textual address of the remote endpoint.
func PeerAddress(fd int) (string, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return "", fmt.Errorf("transport: getpeername: %w", err)
	}
	addr, _, err := AddressToString(sa)
	return addr, err
}
