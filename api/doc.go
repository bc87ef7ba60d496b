// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api defines the public contracts of hioload-rdp: the layered
// Stream filter interface, the TransportLayer facade, readiness events,
// connection settings, and the shared error vocabulary.
//
// Implementation packages (adapters, reactor, transport) depend on api;
// api depends on nothing but the standard library.
package api
