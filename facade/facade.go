// File: facade/facade.go
// Unified facade layer for hioload-rdp.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The Connector aggregates the pieces a session needs to establish
// transports: settings, the abort handle, the last-error sink, the dialer
// and a registry of live transport layers. It exposes Dial for the bare
// transport-layer contract and DialStream for the buffered filter chain.

package facade

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"github.com/momentics/hioload-rdp/adapters"
	"github.com/momentics/hioload-rdp/api"
	"github.com/momentics/hioload-rdp/pool"
	"github.com/momentics/hioload-rdp/reactor"
	"github.com/momentics/hioload-rdp/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// Config holds parameters immutable per Connector.
type Config struct {
	Settings       *api.Settings // nil selects DefaultSettings
	DialTimeoutMs  int           // bound for the connect wait, 0 = forever
	XmitBufferSize int           // transmit ring capacity, 0 = default
	ReadBufferSize int           // size of pooled read buffers
	Logger         hclog.Logger
}

// DefaultConfig returns defaults suitable for a typical client session.
func DefaultConfig() *Config {
	return &Config{
		Settings:       api.DefaultSettings(),
		DialTimeoutMs:  15000,
		XmitBufferSize: adapters.DefaultXmitBufferSize,
		ReadBufferSize: 64 * 1024,
	}
}

// Connector is the session-facing entry point.
type Connector struct {
	settings *api.Settings
	abort    reactor.ManualEvent
	dialer   *transport.Dialer
	bufPool  *pool.BytePool
	log      hclog.Logger

	layers *xsync.MapOf[uint64, api.TransportLayer]
	nextID uint64

	cfgTimeout int
	xmitSize   int

	mu     sync.Mutex
	closed bool
}

// New constructs a Connector, creating the session abort handle.
func New(cfg *Config) (*Connector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	settings := cfg.Settings
	if settings == nil {
		settings = api.DefaultSettings()
	}
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	abort, err := reactor.NewManualEvent()
	if err != nil {
		return nil, fmt.Errorf("facade: abort event: %w", err)
	}

	readSize := cfg.ReadBufferSize
	if readSize <= 0 {
		readSize = 64 * 1024
	}

	c := &Connector{
		settings: settings,
		abort:    abort,
		dialer:   transport.NewDialer(settings, abort, log),
		bufPool:  pool.NewBytePool(readSize),
		log:      log.Named("facade"),
		layers:   xsync.NewMapOf[uint64, api.TransportLayer](),
	}
	c.cfgTimeout = cfg.DialTimeoutMs
	c.xmitSize = cfg.XmitBufferSize
	return c, nil
}

// Dial establishes a transport layer to hostname:port.
func (c *Connector) Dial(ctx context.Context, hostname string, port int) (api.TransportLayer, error) {
	if c.isClosed() {
		return nil, api.ErrStreamClosed
	}
	layer, err := transport.ConnectLayer(ctx, c.dialer, hostname, port, c.cfgTimeout)
	if err != nil {
		return nil, err
	}
	id := atomic.AddUint64(&c.nextID, 1)
	c.layers.Store(id, layer)
	return &trackedLayer{TransportLayer: layer, owner: c, id: id}, nil
}

// DialStream establishes a connection and wraps it in the two-stage filter
// chain: raw socket adapter below, buffered adapter on top.
func (c *Connector) DialStream(ctx context.Context, hostname string, port int) (api.Stream, error) {
	if c.isClosed() {
		return nil, api.ErrStreamClosed
	}
	fd, err := c.dialer.Connect(ctx, hostname, port, c.cfgTimeout)
	if err != nil {
		return nil, err
	}
	raw, err := adapters.NewSocketAdapter(fd, true, c.log)
	if err != nil {
		return nil, err
	}
	return adapters.NewBufferedAdapter(raw, c.xmitSize), nil
}

// Abort signals the session abort handle, cancelling in-flight connect
// waits. Established connections are unaffected.
func (c *Connector) Abort() {
	if err := c.abort.Set(); err != nil {
		c.log.Warn("failed to signal abort", "error", err)
	}
}

// LastError returns the first failure code of the most recent attempt.
func (c *Connector) LastError() api.ConnectErrorCode {
	return c.dialer.LastError.Code()
}

// ClientAddress reports the recorded local endpoint of the last standard
// TCP connect.
func (c *Connector) ClientAddress() (string, bool) {
	return c.settings.ClientAddress, c.settings.IPv6Enabled
}

// BufferPool returns the pooled read buffers sized per configuration.
func (c *Connector) BufferPool() *pool.BytePool { return c.bufPool }

// Close tears down every live layer and releases the abort handle.
func (c *Connector) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.layers.Range(func(id uint64, layer api.TransportLayer) bool {
		if err := layer.Close(); err != nil {
			c.log.Warn("layer close", "id", id, "error", err)
		}
		c.layers.Delete(id)
		return true
	})
	return c.abort.Close()
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// trackedLayer removes itself from the registry on Close.
type trackedLayer struct {
	api.TransportLayer
	owner *Connector
	id    uint64
}

func (t *trackedLayer) Close() error {
	t.owner.layers.Delete(t.id)
	return t.TransportLayer.Close()
}
