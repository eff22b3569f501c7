package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ServerInfo describes the identity of the backing server.
type ServerInfo struct {
	Version       string `json:"version"`
	Mode          string `json:"mode"`
	OS            string `json:"os"`
	UptimeSeconds string `json:"uptime_seconds"`
	Role          string `json:"role"`
}

// ReplicaInfo describes one replication peer of the backing server.
type ReplicaInfo struct {
	Index int    `json:"index"`
	Attrs string `json:"attrs"`
}

// ClientInfo describes one client connected to the backing server.
type ClientInfo struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
	Name string `json:"name"`
	Age  string `json:"age"`
}

// ServersAPI exposes the backing server's topology: identity, replication
// peers and connected clients.
type ServersAPI interface {
	Info(ctx context.Context) (*ServerInfo, error)
	Replicas(ctx context.Context) ([]ReplicaInfo, error)
	Clients(ctx context.Context) ([]ClientInfo, error)

	// Ping measures a round trip to the server.
	Ping(ctx context.Context) (time.Duration, error)
}

type serversAPI struct {
	client redis.UniversalClient
}

func (s *serversAPI) Info(ctx context.Context) (*ServerInfo, error) {
	raw, err := s.client.Info(ctx, "server", "replication").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server info: %w", err)
	}
	fields := parseInfo(raw)
	return &ServerInfo{
		Version:       fields["redis_version"],
		Mode:          fields["redis_mode"],
		OS:            fields["os"],
		UptimeSeconds: fields["uptime_in_seconds"],
		Role:          fields["role"],
	}, nil
}

func (s *serversAPI) Replicas(ctx context.Context) ([]ReplicaInfo, error) {
	raw, err := s.client.Info(ctx, "replication").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replication info: %w", err)
	}
	return parseReplicas(parseInfo(raw)), nil
}

func (s *serversAPI) Clients(ctx context.Context) ([]ClientInfo, error) {
	raw, err := s.client.ClientList(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return parseClientList(raw), nil
}

func (s *serversAPI) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("ping failed: %w", err)
	}
	return time.Since(start), nil
}

// parseReplicas extracts the slaveN entries from a parsed replication
// info section.
func parseReplicas(fields map[string]string) []ReplicaInfo {
	replicas := make([]ReplicaInfo, 0)
	for i := 0; ; i++ {
		attrs, ok := fields[fmt.Sprintf("slave%d", i)]
		if !ok {
			break
		}
		replicas = append(replicas, ReplicaInfo{Index: i, Attrs: attrs})
	}
	return replicas
}

// parseClientList parses the CLIENT LIST reply: one client per line, each a
// space-separated list of key=value pairs.
func parseClientList(raw string) []ClientInfo {
	clients := make([]ClientInfo, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		attrs := make(map[string]string)
		for _, pair := range strings.Fields(line) {
			if key, value, found := strings.Cut(pair, "="); found {
				attrs[key] = value
			}
		}
		clients = append(clients, ClientInfo{
			ID:   attrs["id"],
			Addr: attrs["addr"],
			Name: attrs["name"],
			Age:  attrs["age"],
		})
	}
	return clients
}
