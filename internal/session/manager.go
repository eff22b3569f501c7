// Package session manages live connections to the backing pub/sub server on
// behalf of MCP callers. Every tool adapter resolves its caller's connection
// through the Manager; only the connect/disconnect tools mutate it.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/topicmux/topicmux/internal/broker"
)

const (
	// DefaultIdleTimeout is how long a session may go unused before the
	// background sweep closes it.
	DefaultIdleTimeout = 1 * time.Hour

	// DefaultSweepInterval is how often the background sweep inspects the
	// connection table.
	DefaultSweepInterval = 30 * time.Second
)

// managedConn is one tracked connection to the backing server.
type managedConn struct {
	Conn         broker.Conn
	ConnectedAt  time.Time
	LastActiveAt time.Time
}

// Manager owns the table of active backing-server connections, keyed by the
// caller's MCP session id. It is safe for concurrent use by tool-invocation
// goroutines and its own background sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managedConn
	closed   bool

	idleTimeout   time.Duration
	sweepInterval time.Duration

	sweepTicker *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once

	connectFunc broker.ConnectFunc
	now         func() time.Time
}

// Config holds configuration for the Manager.
type Config struct {
	// IdleTimeout is the duration after which an unused session is evicted.
	// Zero disables idle eviction (dead connections are still reaped).
	// Negative values fall back to DefaultIdleTimeout.
	IdleTimeout time.Duration

	// SweepInterval is the cadence of the background sweep.
	// Zero or negative values fall back to DefaultSweepInterval.
	SweepInterval time.Duration

	// ConnectFunc opens connections to the backing server.
	// Defaults to broker.Connect.
	ConnectFunc broker.ConnectFunc
}

// NewManager creates a Manager and starts its background sweep.
func NewManager(cfg *Config) *Manager {
	idleTimeout := cfg.IdleTimeout
	if idleTimeout < 0 {
		idleTimeout = DefaultIdleTimeout
	}
	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	connectFunc := cfg.ConnectFunc
	if connectFunc == nil {
		connectFunc = broker.Connect
	}

	m := &Manager{
		sessions:      make(map[string]*managedConn),
		idleTimeout:   idleTimeout,
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
		connectFunc:   connectFunc,
		now:           time.Now,
	}
	m.startSweep()
	return m
}

// Connect opens a new connection to the backing server and installs it in the
// table under callerID. If a connection already exists for callerID, the old
// one is closed (best effort) and replaced, but only after the new connection
// has opened successfully: a failed reconnect never destroys a working
// session. The error from a failed open is returned as-is apart from
// wrapping; there is no retry at this layer.
func (m *Manager) Connect(
	ctx context.Context,
	callerID, principal, password, serverURL string,
	properties map[string]string,
) (broker.Conn, error) {
	// Open outside the lock: this blocks on network I/O and must not stall
	// Get/Disconnect calls or the sweep.
	conn, err := m.connectFunc(ctx, broker.ConnectParams{
		Principal:  principal,
		Password:   password,
		URL:        serverURL,
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open connection for session '%s': %w", callerID, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		// Manager already shut down, don't leak the freshly opened handle.
		_ = conn.Close()
		return nil, fmt.Errorf("session manager is shut down")
	}

	if old, exists := m.sessions[callerID]; exists {
		if err := old.Conn.Close(); err != nil {
			log.Printf("[session] error closing replaced connection for session '%s': %v", callerID, err)
		}
	}

	now := m.now()
	m.sessions[callerID] = &managedConn{
		Conn:         conn,
		ConnectedAt:  now,
		LastActiveAt: now,
	}
	m.mu.Unlock()

	log.Printf("[session] opened connection for session '%s'", callerID)
	return conn, nil
}

// Get returns the live connection for callerID, or false if none exists.
// A hit refreshes the session's last-activity timestamp, so a session in
// active use is never idle-evicted. Liveness is not verified here; stale
// connections are reconciled by the sweep.
func (m *Manager) Get(callerID string) (broker.Conn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mc, exists := m.sessions[callerID]
	if !exists {
		return nil, false
	}
	mc.LastActiveAt = m.now()
	return mc.Conn, true
}

// Disconnect removes the connection for callerID from the table and closes
// it. It returns the removed connection and true, or nil and false if no
// connection was tracked for callerID. Close failures are logged, never
// propagated.
func (m *Manager) Disconnect(callerID string) (broker.Conn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mc, exists := m.sessions[callerID]
	if !exists {
		return nil, false
	}
	if err := mc.Conn.Close(); err != nil {
		log.Printf("[session] error closing connection for session '%s': %v", callerID, err)
	}
	delete(m.sessions, callerID)

	log.Printf("[session] closed connection for session '%s'", callerID)
	return mc.Conn, true
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops the background sweep, closes every remaining connection
// (best effort per entry) and clears the table. It is safe to call more than
// once.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for callerID, mc := range m.sessions {
		if err := mc.Conn.Close(); err != nil {
			log.Printf("[session] error closing connection for session '%s' during shutdown: %v", callerID, err)
		}
		delete(m.sessions, callerID)
	}

	log.Printf("[session] shut down, all connections closed")
}

// startSweep starts the background goroutine that periodically evicts dead
// and idle connections.
func (m *Manager) startSweep() {
	m.sweepTicker = time.NewTicker(m.sweepInterval)

	go func() {
		for {
			select {
			case <-m.sweepTicker.C:
				m.sweep()
			case <-m.stopChan:
				m.sweepTicker.Stop()
				return
			}
		}
	}()
}

// sweep walks the connection table once. Connections that report themselves
// closed are dropped without another Close call (the backing server already
// tore them down). Live connections idle past the timeout are closed and
// dropped. Everything else is left untouched.
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for callerID, mc := range m.sessions {
		if mc.Conn.IsClosed() {
			log.Printf("[session] removing dead connection for session '%s'", callerID)
			delete(m.sessions, callerID)
			continue
		}
		if m.idleTimeout > 0 && now.Sub(mc.LastActiveAt) > m.idleTimeout {
			log.Printf(
				"[session] closing idle connection for session '%s' (idle for %v)",
				callerID, now.Sub(mc.LastActiveAt),
			)
			if err := mc.Conn.Close(); err != nil {
				log.Printf("[session] error closing idle connection for session '%s': %v", callerID, err)
			}
			delete(m.sessions, callerID)
		}
	}
}
