// File: api/settings.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection settings consumed by the establishment path. The struct is a
// plain value surface: ownership stays with the session, the dialer only
// reads it (and writes back the client-side address after a successful
// standard-path connect).

package api

// Settings carries the tunables that influence connection establishment
// and socket-option tuning.
type Settings struct {
	// Keep-alive configuration, applied best-effort after connect.
	TCPKeepAlive         bool
	TCPKeepAliveDelay    uint32 // idle seconds before the first probe
	TCPKeepAliveInterval uint32 // seconds between probes
	TCPKeepAliveRetries  uint32 // unanswered probes before drop
	TCPAckTimeout        uint32 // TCP user-timeout, milliseconds

	// Address-family selection policy for resolved hosts.
	PreferIPv6OverIPv4 bool
	ForceIPvX          uint32 // 0 = any, 4 or 6 to require a family

	// Establishment mode flags.
	GatewayEnabled       bool
	RemoteAssistanceMode bool

	// Alternate connection targets used for host racing. TargetNetPorts
	// is parallel to TargetNetAddresses; when empty, the dial port is
	// used for every candidate.
	TargetNetAddresses []string
	TargetNetPorts     []uint32

	// Outputs: the local endpoint of the established connection.
	ClientAddress string
	IPv6Enabled   bool
}

// DefaultSettings returns the defaults used when the session supplies
// nothing: keep-alive on with conservative probing, no family forcing.
func DefaultSettings() *Settings {
	return &Settings{
		TCPKeepAlive:         true,
		TCPKeepAliveDelay:    30,
		TCPKeepAliveInterval: 3,
		TCPKeepAliveRetries:  5,
		TCPAckTimeout:        9000,
	}
}
