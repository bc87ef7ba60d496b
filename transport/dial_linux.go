//go:build linux
// +build linux

// File: transport/dial_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux connect paths: local domain sockets, host racing, and the
// timeout-bounded non-blocking TCP connect with abort-handle observation.

package transport

import (
	"context"
	"fmt"

	"github.com/momentics/hioload-rdp/api"
	"github.com/momentics/hioload-rdp/reactor"
	"golang.org/x/sys/unix"
)

// minReceiveBuffer is the operational floor for SO_RCVBUF; an undersized
// receive buffer stalls the protocol above, so growing it is mandatory.
const minReceiveBuffer = 32 * 1024

// connectUDS connects a local domain socket. Any failure is fatal; there
// is no retry on this path.
func (d *Dialer) connectUDS(path string) (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, d.fail(api.ErrCodeConnectFailed, err)
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		_ = unix.Close(fd)
		return -1, d.fail(api.ErrCodeConnectFailed, fmt.Errorf("uds connect %s: %w", path, err))
	}
	return fd, nil
}

// socketFor opens a blocking TCP socket matching the candidate's family.
func socketFor(c Candidate) (int, error) {
	family := unix.AF_INET
	if c.IsIPv6() {
		family = unix.AF_INET6
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("transport: socket: %w", err)
	}
	return fd, nil
}

// sockaddrFor builds the connect sockaddr for a candidate.
func sockaddrFor(c Candidate) unix.Sockaddr {
	if c.IsIPv6() {
		sa := &unix.SockaddrInet6{Port: c.Port}
		copy(sa.Addr[:], c.IP.To16())
		return sa
	}
	sa := &unix.SockaddrInet4{Port: c.Port}
	copy(sa.Addr[:], c.IP.To4())
	return sa
}

// connectHost is the standard TCP path: optional host racing, then single
// resolution with family selection, a timeout-bounded connect and
// post-connect tuning.
func (d *Dialer) connectHost(ctx context.Context, hostname string, port int, timeoutMs int) (int, error) {
	settings := d.Settings
	fd := -1

	if !settings.GatewayEnabled && len(settings.TargetNetAddresses) > 0 {
		if !d.hostnameResolvable(ctx, hostname) || settings.RemoteAssistanceMode {
			won, ok := d.connectMulti(ctx, settings.TargetNetAddresses, settings.TargetNetPorts, port)
			if !ok {
				return -1, d.fail(api.ErrCodeConnectCancelled, nil)
			}
			fd = won
		}
	}

	if fd < 0 {
		cands, err := ResolveHost(ctx, hostname, port)
		if err != nil || len(cands) == 0 {
			return -1, d.fail(api.ErrCodeDNSNameNotFound, err)
		}

		idx, ok := selectFrom(settings, cands, 0)
		if !ok {
			return -1, d.fail(api.ErrCodeDNSNameNotFound, nil)
		}

		// Socket creation failure advances to the next address satisfying
		// the selection policy; exhausting the list is fatal.
		for {
			fd, err = socketFor(cands[idx])
			if err == nil {
				break
			}
			next, ok := selectFrom(settings, cands, idx+1)
			if !ok {
				return -1, d.fail(api.ErrCodeConnectFailed, err)
			}
			idx = next
		}

		d.log.Debug("connecting to peer", "address", cands[idx].IP.String(), "port", cands[idx].Port)

		if err := d.connectTimeout(fd, sockaddrFor(cands[idx]), timeoutMs); err != nil {
			_ = unix.Close(fd)
			d.log.Error("failed to connect", "hostname", hostname, "error", err)
			return -1, err
		}
	}

	if err := d.tuneConnected(fd); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// hostnameResolvable is the DNS precheck gating host racing; a negative
// result records the DNS failure code.
func (d *Dialer) hostnameResolvable(ctx context.Context, hostname string) bool {
	if _, err := ResolveHost(ctx, hostname, -1); err != nil {
		d.LastError.SetIfNotSet(api.ErrCodeDNSNameNotFound)
		return false
	}
	return true
}

// connectTimeout performs a non-blocking connect bounded by timeoutMs,
// suspended on the socket's readiness and the abort handle simultaneously.
// On success the descriptor is restored to blocking mode for the layer
// above.
func (d *Dialer) connectTimeout(fd int, sa unix.Sockaddr, timeoutMs int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return d.fail(api.ErrCodeConnectFailed, err)
	}

	switch err := unix.Connect(fd, sa); err {
	case nil, unix.EINPROGRESS, unix.EAGAIN, unix.EINTR:
	default:
		return d.fail(api.ErrCodeConnectFailed, err)
	}

	var outcome reactor.ConnectOutcome
	var err error
	if d.Abort != nil {
		outcome, err = reactor.WaitConnect(fd, d.Abort, timeoutMs)
	} else {
		var ready bool
		ready, err = reactor.Wait(fd, true, timeoutMs)
		outcome = reactor.OutcomeTimeout
		if ready {
			outcome = reactor.OutcomeReady
		}
	}
	if err != nil {
		return d.fail(api.ErrCodeConnectFailed, err)
	}

	switch outcome {
	case reactor.OutcomeAbort:
		return d.fail(api.ErrCodeConnectCancelled, nil)
	case reactor.OutcomeTimeout:
		return d.fail(api.ErrCodeConnectFailed, api.ErrTimeout)
	}

	// Write readiness alone does not prove the connect succeeded.
	soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return d.fail(api.ErrCodeConnectFailed, err)
	}
	if soerr != 0 {
		return d.fail(api.ErrCodeConnectFailed, unix.Errno(soerr))
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		return d.fail(api.ErrCodeConnectFailed, err)
	}
	return nil
}

// racePeer holds the pre-allocated resources of one racing candidate.
type racePeer struct {
	fd    int
	cands []Candidate
	pick  int
}

// connectMulti races the alternate target list: every candidate is
// resolved and given a socket up front, then blocking connects are issued
// strictly one at a time; the first that succeeds wins. All sockets of
// non-winning or unattempted candidates are released before returning.
func (d *Dialer) connectMulti(ctx context.Context, hostnames []string, ports []uint32, defaultPort int) (int, bool) {
	dialRaceRuns.Inc()

	peers := make([]racePeer, len(hostnames))
	for i := range peers {
		peers[i].fd = -1
	}

	for i, host := range hostnames {
		port := defaultPort
		if i < len(ports) {
			port = int(ports[i])
		}
		cands, err := ResolveHost(ctx, host, port)
		if err != nil || len(cands) == 0 {
			continue
		}
		pick := raceCandidate(cands)
		fd, err := socketFor(cands[pick])
		if err != nil {
			continue
		}
		peers[i] = racePeer{fd: fd, cands: cands, pick: pick}
	}

	winner := -1
	for i := range peers {
		if peers[i].fd < 0 {
			continue
		}
		if err := connectBlocking(peers[i].fd, sockaddrFor(peers[i].cands[peers[i].pick])); err == nil {
			winner = i
			break
		}
	}

	result := -1
	if winner >= 0 {
		result = peers[winner].fd
		peers[winner].fd = -1
	}
	for i := range peers {
		if peers[i].fd >= 0 {
			_ = unix.Close(peers[i].fd)
			peers[i].fd = -1
		}
	}

	if winner < 0 {
		d.log.Warn("no racing candidate could be connected", "candidates", len(hostnames))
		return -1, false
	}
	d.log.Debug("racing candidate won", "host", hostnames[winner])
	return result, true
}

// connectBlocking issues a blocking connect, resolving an interrupted
// attempt through write readiness plus SO_ERROR.
func connectBlocking(fd int, sa unix.Sockaddr) error {
	err := unix.Connect(fd, sa)
	if err == nil {
		return nil
	}
	if err != unix.EINTR {
		return err
	}
	if _, perr := reactor.Wait(fd, true, 0); perr != nil {
		return perr
	}
	soerr, gerr := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if gerr != nil {
		return gerr
	}
	if soerr != 0 {
		return unix.Errno(soerr)
	}
	return nil
}

// tuneConnected applies the post-connect tuning of the standard TCP path:
// nodelay best-effort, a hard receive-buffer floor, keep-alive, a final
// abort probe, and recording of the local endpoint address.
func (d *Dialer) tuneConnected(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		d.log.Warn("unable to set TCP_NODELAY", "error", err)
	}

	rcv, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF)
	if err == nil && rcv < minReceiveBuffer {
		if serr := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, minReceiveBuffer); serr != nil {
			d.log.Error("unable to grow receive buffer", "error", serr)
			return d.fail(api.ErrCodeConnectFailed, serr)
		}
	}

	SetKeepAliveMode(d.Settings, fd, d.log)

	if d.abortSignaled() {
		return d.fail(api.ErrCodeConnectCancelled, nil)
	}

	addr, ipv6, err := LocalAddress(fd)
	if err != nil {
		d.log.Error("couldn't get socket ip address", "error", err)
		return d.fail(api.ErrCodeConnectFailed, err)
	}
	d.Settings.ClientAddress = addr
	d.Settings.IPv6Enabled = ipv6
	return nil
}
