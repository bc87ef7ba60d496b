// File: pool/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pool provides the fixed-capacity byte ring buffer backing the
// buffered socket filter's transmit queue, plus a reusable byte pool for
// read paths.
package pool
