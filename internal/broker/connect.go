package broker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ConnectParams carries everything needed to open a connection to the
// backing server. Properties are opaque tuning knobs applied to the client
// options; unknown keys are ignored.
type ConnectParams struct {
	Principal  string
	Password   string
	URL        string
	Properties map[string]string
}

// ConnectFunc opens a connection to the backing server.
// The session manager takes a ConnectFunc so tests can substitute a fake.
type ConnectFunc func(ctx context.Context, params ConnectParams) (Conn, error)

// Connect opens a connection to the backing server and verifies it with a
// synchronous ping. The returned Conn is live and owned by the caller.
func Connect(ctx context.Context, params ConnectParams) (Conn, error) {
	opts, err := redis.ParseURL(params.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}

	if params.Principal != "" {
		opts.Username = params.Principal
	}
	if params.Password != "" {
		opts.Password = params.Password
	}

	connID := uuid.NewString()
	opts.ClientName = "topicmux-" + connID

	if len(params.Properties) > 0 {
		applyProperties(opts, params.Properties)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to backing server at %s: %w", opts.Addr, err)
	}

	return newRedisConn(connID, client), nil
}

// applyProperties maps recognized session properties onto client options.
// Unrecognized keys are silently ignored so callers can carry
// deployment-specific metadata in the same map.
func applyProperties(opts *redis.Options, properties map[string]string) {
	if v, ok := properties["db"]; ok {
		if db, err := strconv.Atoi(v); err == nil && db >= 0 {
			opts.DB = db
		}
	}
	if v, ok := properties["pool_size"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.PoolSize = n
		}
	}
	if v, ok := properties["read_timeout"]; ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			opts.ReadTimeout = d
		}
	}
	if v, ok := properties["client_name"]; ok && v != "" {
		opts.ClientName = v
	}
}
