// File: adapters/state.go
// Author: momentics <momentics@gmail.com>
//
// Explicit retry state machine shared by the filters. Fatal implies no
// further retry until the adapter is re-initialized.

package adapters

type retryState int

const (
	stateIdle retryState = iota
	stateRetryRead
	stateRetryWrite
	stateFatal
)

func (s retryState) shouldRetry() bool {
	return s == stateRetryRead || s == stateRetryWrite
}

func (s retryState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRetryRead:
		return "retry-read"
	case stateRetryWrite:
		return "retry-write"
	case stateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
