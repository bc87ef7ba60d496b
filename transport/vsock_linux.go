//go:build linux
// +build linux

// File: transport/vsock_linux.go
// Author: momentics <momentics@gmail.com>
//
// Hypervisor socket (AF_VSOCK) connect path.

package transport

import (
	"fmt"

	"github.com/momentics/hioload-rdp/api"
	"golang.org/x/sys/unix"
)

// vmaddrCIDHost is the well-known context id of the host.
const vmaddrCIDHost = 2

// connectVSock connects a hypervisor socket addressed by context id. The
// host context id routes through the "to host" flag.
func (d *Dialer) connectVSock(cid uint32, port uint32) (int, error) {
	fd, err := unix.Socket(unix.AF_VSOCK, unix.SOCK_STREAM, 0)
	if err != nil {
		d.log.Warn("vsock socket creation failed", "error", err)
		return -1, d.fail(api.ErrCodeConnectFailed, err)
	}

	sa := &unix.SockaddrVM{CID: cid, Port: port}
	if cid == vmaddrCIDHost {
		sa.Flags = unix.VMADDR_FLAG_TO_HOST
	}

	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, d.fail(api.ErrCodeConnectFailed, fmt.Errorf("vsock connect cid %d: %w", cid, err))
	}
	return fd, nil
}
