// File: transport/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package transport turns a hostname, filesystem path, hypervisor socket
// address or externally supplied descriptor into a connected, tuned socket
// descriptor, and wraps such descriptors in the TCP transport-layer
// backend implementing api.TransportLayer.
//
// Establishment covers name resolution with an address-family selection
// policy, timeout-bounded non-blocking connect governed by an external
// abort handle, sequential racing across alternate target hosts, and
// post-connect socket-option tuning (nodelay, receive buffer floor,
// keep-alive, TCP user-timeout).
package transport
