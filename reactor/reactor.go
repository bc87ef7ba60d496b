// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral declarations for readiness events and waits.

package reactor

import "github.com/momentics/hioload-rdp/api"

// ManualEvent is an explicitly signaled api.Event, used as the session's
// abort handle. Once Set, every Wait returns immediately until Reset.
type ManualEvent interface {
	api.Event

	// Set signals the event.
	Set() error
}

// ConnectOutcome reports which source fired first during the dual wait of
// a timeout-bounded connect.
type ConnectOutcome int

const (
	// OutcomeReady means the socket reached write/connect readiness.
	OutcomeReady ConnectOutcome = iota
	// OutcomeAbort means the external abort handle fired first.
	OutcomeAbort
	// OutcomeTimeout means neither source fired within the bound.
	OutcomeTimeout
)

func (o ConnectOutcome) String() string {
	switch o {
	case OutcomeReady:
		return "ready"
	case OutcomeAbort:
		return "abort"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}
