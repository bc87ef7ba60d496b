// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error types and the connect-failure code vocabulary.

package api

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors shared across the library.
var (
	// ErrWouldBlock reports a transient condition: retry the same
	// operation after the next readiness signal.
	ErrWouldBlock = errors.New("operation would block")

	// ErrTimeout reports that a bounded wait expired. Distinct from an
	// I/O error by design.
	ErrTimeout = errors.New("operation timed out")

	ErrStreamClosed   = errors.New("stream is closed")
	ErrBufferFull     = errors.New("transmit buffer exhausted")
	ErrNotSupported   = errors.New("operation not supported on this platform")
	ErrInvalidAddress = errors.New("invalid address")
)

// ConnectErrorCode is the fixed vocabulary reported to the session's
// last-error sink when connection establishment fails.
type ConnectErrorCode int

const (
	ErrCodeNone ConnectErrorCode = iota
	ErrCodeDNSNameNotFound
	ErrCodeConnectFailed
	ErrCodeConnectCancelled
)

func (c ConnectErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeDNSNameNotFound:
		return "dns name not found"
	case ErrCodeConnectFailed:
		return "connect failed"
	case ErrCodeConnectCancelled:
		return "connect cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// Err maps the code onto its sentinel error.
func (c ConnectErrorCode) Err() error {
	switch c {
	case ErrCodeDNSNameNotFound:
		return ErrDNSNameNotFound
	case ErrCodeConnectFailed:
		return ErrConnectFailed
	case ErrCodeConnectCancelled:
		return ErrConnectCancelled
	default:
		return nil
	}
}

// Connect-failure sentinels matching the code vocabulary.
var (
	ErrDNSNameNotFound  = errors.New("dns name not found")
	ErrConnectFailed    = errors.New("connect failed")
	ErrConnectCancelled = errors.New("connect cancelled")
)

// LastErrorSink records the first connect-failure code of an attempt.
// Subsequent codes are ignored until Clear, mirroring a "set last error if
// not already set" reporting surface.
type LastErrorSink struct {
	mu   sync.Mutex
	code ConnectErrorCode
}

// SetIfNotSet records code unless another code is already present.
// Reports whether the code was stored.
func (s *LastErrorSink) SetIfNotSet(code ConnectErrorCode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code != ErrCodeNone || code == ErrCodeNone {
		return false
	}
	s.code = code
	return true
}

// Code returns the recorded code, ErrCodeNone if unset.
func (s *LastErrorSink) Code() ConnectErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// Clear resets the sink for the next attempt.
func (s *LastErrorSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = ErrCodeNone
}
