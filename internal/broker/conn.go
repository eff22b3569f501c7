// Package broker wraps the backing pub/sub server's client SDK behind a
// connection-handle abstraction. Tool adapters reach server capabilities
// through typed accessors on Conn rather than through the raw client.
package broker

import (
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Conn is one live, exclusively-owned connection to the backing server.
// The session manager owns the lifecycle of every Conn it hands out; tool
// adapters must not call Close themselves.
type Conn interface {
	// ID is the unique identifier assigned to this connection at open time.
	ID() string

	// Close terminates the connection. Closing an already-closed connection
	// is a no-op.
	Close() error

	// IsClosed reports whether the connection has been closed.
	IsClosed() bool

	// Capability accessors. Each returns a narrow API over one family of
	// backing-server operations.
	Topics() TopicsAPI
	Metrics() MetricsAPI
	Security() SecurityAPI
	Servers() ServersAPI
}

// redisConn is the go-redis backed implementation of Conn.
type redisConn struct {
	id     string
	client redis.UniversalClient
	closed atomic.Bool

	topics   *topicsAPI
	metrics  *metricsAPI
	security *securityAPI
	servers  *serversAPI
}

func newRedisConn(id string, client redis.UniversalClient) *redisConn {
	c := &redisConn{id: id, client: client}
	c.topics = &topicsAPI{client: client}
	c.metrics = &metricsAPI{client: client}
	c.security = &securityAPI{client: client}
	c.servers = &serversAPI{client: client}
	return c
}

func (c *redisConn) ID() string { return c.id }

func (c *redisConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.client.Close()
}

func (c *redisConn) IsClosed() bool {
	return c.closed.Load()
}

func (c *redisConn) Topics() TopicsAPI     { return c.topics }
func (c *redisConn) Metrics() MetricsAPI   { return c.metrics }
func (c *redisConn) Security() SecurityAPI { return c.security }
func (c *redisConn) Servers() ServersAPI   { return c.servers }
