// File: transport/resolve.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Name resolution and the address-family selection policy. Kept free of
// syscall types so the policy is testable on every platform.

package transport

import (
	"context"
	"net"

	"github.com/momentics/hioload-rdp/api"
)

// Candidate is one resolved address for a connect attempt. A candidate is
// consumed by exactly one attempt; unconsumed candidates carry no
// resources in Go beyond the slice itself.
type Candidate struct {
	IP   net.IP
	Port int
}

// IsIPv6 reports whether the candidate is an IPv6 address.
func (c Candidate) IsIPv6() bool {
	return c.IP.To4() == nil
}

// ResolveHost resolves hostname (DNS name or literal IP) into connect
// candidates, family-agnostic: whatever families the platform returns are
// kept in order. port < 0 resolves the name only, for resolvability
// checks.
func ResolveHost(ctx context.Context, hostname string, port int) ([]Candidate, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return nil, err
	}
	cands := make([]Candidate, 0, len(addrs))
	for _, a := range addrs {
		cands = append(cands, Candidate{IP: a.IP, Port: port})
	}
	return cands, nil
}

// selectFrom applies the family selection policy to cands starting at
// index start: with PreferIPv6OverIPv4 the first IPv6 entry is taken,
// falling back to start when none exists; a forced family (4 or 6) then
// requires a matching entry. Returns the chosen index, or false when the
// constraint cannot be satisfied.
func selectFrom(settings *api.Settings, cands []Candidate, start int) (int, bool) {
	if start >= len(cands) {
		return 0, false
	}
	idx := start

	if settings.PreferIPv6OverIPv4 {
		found := -1
		for i := idx; i < len(cands); i++ {
			if cands[i].IsIPv6() {
				found = i
				break
			}
		}
		if found >= 0 {
			idx = found
		}
	}

	switch settings.ForceIPvX {
	case 4, 6:
		wantV6 := settings.ForceIPvX == 6
		for idx < len(cands) && cands[idx].IsIPv6() != wantV6 {
			idx++
		}
		if idx >= len(cands) {
			return 0, false
		}
	}

	return idx, true
}

// raceCandidate picks the address used for one racing candidate: the first
// resolved entry, except that an IPv6 head with more entries behind it
// yields to the first IPv4 entry when one exists.
func raceCandidate(cands []Candidate) int {
	if len(cands) > 1 && cands[0].IsIPv6() {
		for i := 1; i < len(cands); i++ {
			if !cands[i].IsIPv6() {
				return i
			}
		}
	}
	return 0
}
