package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlowLogEntry is one entry from the server's slow command log.
type SlowLogEntry struct {
	ID       int64         `json:"id"`
	Time     time.Time     `json:"time"`
	Duration time.Duration `json:"duration"`
	Args     []string      `json:"args"`
}

// MetricsAPI exposes the backing server's introspection metrics.
type MetricsAPI interface {
	// Section returns the key/value pairs of one INFO section
	// (e.g. "memory", "stats", "replication"). An empty section name
	// returns the default sections.
	Section(ctx context.Context, section string) (map[string]string, error)

	// SlowLog returns up to count entries from the slow command log.
	SlowLog(ctx context.Context, count int64) ([]SlowLogEntry, error)
}

type metricsAPI struct {
	client redis.UniversalClient
}

func (m *metricsAPI) Section(ctx context.Context, section string) (map[string]string, error) {
	var raw string
	var err error
	if section == "" {
		raw, err = m.client.Info(ctx).Result()
	} else {
		raw, err = m.client.Info(ctx, section).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server info: %w", err)
	}
	return parseInfo(raw), nil
}

func (m *metricsAPI) SlowLog(ctx context.Context, count int64) ([]SlowLogEntry, error) {
	if count <= 0 {
		count = 10
	}
	logs, err := m.client.SlowLogGet(ctx, count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slow log: %w", err)
	}

	entries := make([]SlowLogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, SlowLogEntry{
			ID:       l.ID,
			Time:     l.Time,
			Duration: l.Duration,
			Args:     l.Args,
		})
	}
	return entries, nil
}

// parseInfo parses the line-oriented INFO reply format into a flat map.
// Section headers ("# Memory") and blank lines are skipped.
func parseInfo(raw string) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		result[key] = value
	}
	return result
}
