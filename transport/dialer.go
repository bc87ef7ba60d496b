// File: transport/dialer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral dialer surface: identifier dispatch and shared state.
// The per-transport connect paths live in the platform files.

package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/momentics/hioload-rdp/api"
)

// Identifier prefixes recognized on the connect path.
const (
	// localSocketPrefix marks a filesystem path to a local domain socket.
	localSocketPrefix = "/"
	// externalSocketPrefix marks an externally supplied, already
	// connected descriptor passed in the port argument.
	externalSocketPrefix = "|"
	// vsockPrefix marks a hypervisor socket target carrying a numeric
	// context id.
	vsockPrefix = "vsock://"
)

var (
	dialAttempts  = metrics.NewCounter("hioload_rdp_dial_attempts_total")
	dialFailures  = metrics.NewCounter("hioload_rdp_dial_failures_total")
	dialRaceRuns  = metrics.NewCounter("hioload_rdp_dial_race_runs_total")
	dialCancelled = metrics.NewCounter("hioload_rdp_dial_cancelled_total")
)

// Dialer performs connection establishment. One Dialer serves one session:
// it reads the session's settings, reports failure codes to the session's
// last-error sink, and observes the session's abort handle during
// timeout-bounded connects.
type Dialer struct {
	Settings  *api.Settings
	LastError *api.LastErrorSink

	// Abort, when non-nil, cancels in-flight connect waits. It has no
	// effect on established connections.
	Abort api.Event

	log hclog.Logger
}

// NewDialer builds a Dialer. settings may be nil for defaults; abort may
// be nil when the session has no cancellation surface.
func NewDialer(settings *api.Settings, abort api.Event, log hclog.Logger) *Dialer {
	if settings == nil {
		settings = api.DefaultSettings()
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Dialer{
		Settings:  settings,
		LastError: &api.LastErrorSink{},
		Abort:     abort,
		log:       log.Named("dialer"),
	}
}

// fail records code in the sink and wraps the cause.
func (d *Dialer) fail(code api.ConnectErrorCode, cause error) error {
	d.LastError.SetIfNotSet(code)
	dialFailures.Inc()
	if code == api.ErrCodeConnectCancelled {
		dialCancelled.Inc()
	}
	if cause == nil {
		return code.Err()
	}
	return fmt.Errorf("%w: %v", code.Err(), cause)
}

// Connect resolves the identifier and establishes a connected descriptor.
//
// Identifier shapes: a leading '/' is a local domain socket path; a
// leading '|' means port already names an open descriptor; a vsock form
// addresses a hypervisor socket by numeric context id; anything else is a
// DNS hostname or literal IP dialed with the given timeout.
func (d *Dialer) Connect(ctx context.Context, hostname string, port int, timeoutMs int) (int, error) {
	dialAttempts.Inc()

	if hostname == "" {
		return -1, d.fail(api.ErrCodeConnectFailed, api.ErrInvalidAddress)
	}

	switch {
	case strings.HasPrefix(hostname, localSocketPrefix):
		d.log.Debug("connecting to local socket", "path", hostname)
		return d.connectUDS(hostname)

	case strings.HasPrefix(hostname, externalSocketPrefix):
		if port < 0 {
			return -1, d.fail(api.ErrCodeConnectFailed, api.ErrInvalidAddress)
		}
		d.log.Debug("adopting external descriptor", "fd", port)
		return port, nil

	case strings.HasPrefix(hostname, vsockPrefix):
		cid, err := parseVSockCID(hostname)
		if err != nil {
			return -1, d.fail(api.ErrCodeConnectFailed, err)
		}
		d.log.Debug("connecting to hypervisor socket", "cid", cid, "port", port)
		return d.connectVSock(cid, uint32(port))

	default:
		return d.connectHost(ctx, hostname, port, timeoutMs)
	}
}

// parseVSockCID extracts the numeric context id from a vsock identifier.
func parseVSockCID(hostname string) (uint32, error) {
	raw := strings.TrimPrefix(hostname, vsockPrefix)
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("transport: invalid vsock context id %q: %w", raw, err)
	}
	return uint32(val), nil
}

// abortSignaled probes the abort handle without blocking.
func (d *Dialer) abortSignaled() bool {
	if d.Abort == nil {
		return false
	}
	set, err := d.Abort.Wait(-1)
	return err == nil && set
}
