package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/topicmux/topicmux/internal/broker"
)

// mockConn is a minimal broker.Conn for testing the session management logic.
type mockConn struct {
	mu         sync.Mutex
	id         string
	closed     bool
	closeCount int
	closeErr   error
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount++
	m.closed = true
	return m.closeErr
}

func (m *mockConn) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

func (m *mockConn) markClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockConn) Topics() broker.TopicsAPI     { return nil }
func (m *mockConn) Metrics() broker.MetricsAPI   { return nil }
func (m *mockConn) Security() broker.SecurityAPI { return nil }
func (m *mockConn) Servers() broker.ServersAPI   { return nil }

// connFeeder hands out a fresh mockConn per Connect call.
type connFeeder struct {
	mu    sync.Mutex
	conns []*mockConn
	err   error
}

func (f *connFeeder) connect(ctx context.Context, params broker.ConnectParams) (broker.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := &mockConn{id: fmt.Sprintf("conn-%d", len(f.conns))}
	f.conns = append(f.conns, c)
	return c, nil
}

// newTestManager creates a manager whose sweep never fires on its own;
// tests drive the sweep directly for determinism.
func newTestManager(t *testing.T, idleTimeout time.Duration, feeder *connFeeder) *Manager {
	t.Helper()
	m := NewManager(&Config{
		IdleTimeout:   idleTimeout,
		SweepInterval: time.Hour,
		ConnectFunc:   feeder.connect,
	})
	t.Cleanup(m.Shutdown)
	return m
}

func TestNewManagerDefaults(t *testing.T) {
	tests := []struct {
		name        string
		idleTimeout time.Duration
		wantTimeout time.Duration
	}{
		{"positive timeout", 10 * time.Minute, 10 * time.Minute},
		{"zero timeout (no idle eviction)", 0, 0},
		{"negative timeout uses default", -1, DefaultIdleTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(&Config{
				IdleTimeout:   tt.idleTimeout,
				SweepInterval: time.Hour,
				ConnectFunc:   (&connFeeder{}).connect,
			})
			defer m.Shutdown()

			assert.Equal(t, tt.wantTimeout, m.idleTimeout)
		})
	}
}

func TestConnectAndGet(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	conn, err := m.Connect(context.Background(), "s1", "admin", "pw", "redis://x", nil)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get("s1")
	require.True(t, ok)
	assert.Same(t, conn, got)

	_, ok = m.Get("unknown")
	assert.False(t, ok)
}

func TestConnectReplacesExistingAndClosesOld(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	a, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	b, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NotSame(t, a, b)

	// old connection closed exactly once, new one is the visible session
	assert.Equal(t, 1, a.(*mockConn).CloseCount())
	assert.Equal(t, 0, b.(*mockConn).CloseCount())
	got, ok := m.Get("s1")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 1, m.Count())
}

func TestConnectFailureLeavesExistingSessionIntact(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	a, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	feeder.mu.Lock()
	feeder.err = errors.New("connection refused")
	feeder.mu.Unlock()

	_, err = m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	// the working session must survive a failed reconnect
	got, ok := m.Get("s1")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 0, a.(*mockConn).CloseCount())
}

func TestConnectToleratesCloseFailureOnReplace(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	a, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)
	a.(*mockConn).closeErr = errors.New("close failed")

	b, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	got, ok := m.Get("s1")
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestDisconnect(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	conn, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	removed, ok := m.Disconnect("s1")
	require.True(t, ok)
	assert.Same(t, conn, removed)
	assert.Equal(t, 1, conn.(*mockConn).CloseCount())

	_, ok = m.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestDisconnectUnknownSession(t *testing.T) {
	m := newTestManager(t, time.Hour, &connFeeder{})

	removed, ok := m.Disconnect("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, removed)
}

func TestSweepRemovesDeadConnectionWithoutClosing(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	conn, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	// simulate the backing server tearing the connection down
	conn.(*mockConn).markClosed()

	m.sweep()

	_, ok := m.Get("s1")
	assert.False(t, ok)
	// the sweep must not call Close on a handle that is already closed
	assert.Equal(t, 0, conn.(*mockConn).CloseCount())
}

func TestSweepClosesIdleConnection(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Second, feeder)

	conn, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	// backdate the session's last activity past the idle timeout
	m.mu.Lock()
	m.sessions["s1"].LastActiveAt = time.Now().Add(-2 * time.Second)
	m.mu.Unlock()

	m.sweep()

	_, ok := m.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 1, conn.(*mockConn).CloseCount())
}

func TestSweepLeavesActiveConnectionAlone(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	conn, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	m.sweep()

	got, ok := m.Get("s1")
	require.True(t, ok)
	assert.Same(t, conn, got)
	assert.Equal(t, 0, conn.(*mockConn).CloseCount())
}

func TestNoIdleEvictionWhenTimeoutZero(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, 0, feeder)

	_, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	m.mu.Lock()
	m.sessions["s1"].LastActiveAt = time.Now().Add(-24 * time.Hour)
	m.mu.Unlock()

	m.sweep()

	_, ok := m.Get("s1")
	assert.True(t, ok)
}

func TestGetRefreshesIdleWindow(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Minute, feeder)

	_, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)

	m.mu.Lock()
	m.sessions["s1"].LastActiveAt = time.Now().Add(-2 * time.Minute)
	m.mu.Unlock()

	// a Get right before the sweep keeps the session alive
	_, ok := m.Get("s1")
	require.True(t, ok)

	m.sweep()

	_, ok = m.Get("s1")
	assert.True(t, ok)
}

func TestShutdownClosesEverything(t *testing.T) {
	feeder := &connFeeder{}
	m := NewManager(&Config{
		IdleTimeout:   time.Hour,
		SweepInterval: time.Hour,
		ConnectFunc:   feeder.connect,
	})

	a, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.NoError(t, err)
	b, err := m.Connect(context.Background(), "s2", "u", "p", "redis://y", nil)
	require.NoError(t, err)

	m.Shutdown()

	assert.Equal(t, 1, a.(*mockConn).CloseCount())
	assert.Equal(t, 1, b.(*mockConn).CloseCount())
	_, ok := m.Get("s1")
	assert.False(t, ok)
	_, ok = m.Get("s2")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())

	// calling Shutdown again must not panic
	m.Shutdown()
}

func TestConnectAfterShutdownFails(t *testing.T) {
	feeder := &connFeeder{}
	m := NewManager(&Config{
		IdleTimeout:   time.Hour,
		SweepInterval: time.Hour,
		ConnectFunc:   feeder.connect,
	})
	m.Shutdown()

	_, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
	require.Error(t, err)

	// the connection opened during the racing Connect must not leak
	feeder.mu.Lock()
	defer feeder.mu.Unlock()
	require.Len(t, feeder.conns, 1)
	assert.Equal(t, 1, feeder.conns[0].CloseCount())
}

func TestSweepStopsAfterShutdown(t *testing.T) {
	feeder := &connFeeder{}
	m := NewManager(&Config{
		IdleTimeout:   time.Hour,
		SweepInterval: 10 * time.Millisecond,
		ConnectFunc:   feeder.connect,
	})
	m.Shutdown()

	// a dead entry seeded after shutdown stays put because the sweep no
	// longer runs
	dead := &mockConn{id: "zombie"}
	dead.markClosed()
	m.mu.Lock()
	m.sessions["zombie"] = &managedConn{Conn: dead, LastActiveAt: time.Now()}
	m.mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	m.mu.Lock()
	_, present := m.sessions["zombie"]
	m.mu.Unlock()
	assert.True(t, present)
}

func TestConcurrentConnectsSameCaller(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Connect(context.Background(), "s1", "u", "p", "redis://x", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// exactly one connection survives, every superseded one closed exactly once
	require.Equal(t, 1, m.Count())
	survivor, ok := m.Get("s1")
	require.True(t, ok)

	feeder.mu.Lock()
	defer feeder.mu.Unlock()
	require.Len(t, feeder.conns, n)
	closedCount := 0
	for _, c := range feeder.conns {
		switch c.CloseCount() {
		case 0:
			assert.Same(t, survivor, broker.Conn(c))
		case 1:
			closedCount++
		default:
			t.Errorf("connection %s closed %d times", c.id, c.CloseCount())
		}
	}
	assert.Equal(t, n-1, closedCount)
}

func TestConcurrentGetDisconnectAndSweep(t *testing.T) {
	feeder := &connFeeder{}
	m := newTestManager(t, time.Hour, feeder)

	for i := 0; i < 8; i++ {
		_, err := m.Connect(context.Background(), fmt.Sprintf("s%d", i), "u", "p", "redis://x", nil)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("s%d", i)
		wg.Add(3)
		go func() {
			defer wg.Done()
			m.Get(id)
		}()
		go func() {
			defer wg.Done()
			m.Disconnect(id)
		}()
		go func() {
			defer wg.Done()
			m.sweep()
		}()
	}
	wg.Wait()

	// every connection ends up closed exactly once, table is empty
	assert.Equal(t, 0, m.Count())
	feeder.mu.Lock()
	defer feeder.mu.Unlock()
	for _, c := range feeder.conns {
		assert.Equal(t, 1, c.CloseCount(), "connection %s", c.id)
	}
}
