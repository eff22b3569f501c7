package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamEntry is one message read from a stream.
type StreamEntry struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// TopicsAPI exposes the backing server's messaging operations: fire-and-forget
// channels and persistent streams. Channel patterns and stream ids are opaque
// strings passed through to the server.
type TopicsAPI interface {
	// Publish sends a message to a channel and returns the number of
	// subscribers that received it.
	Publish(ctx context.Context, channel, message string) (int64, error)

	// ListChannels returns the active channels matching the given pattern.
	// An empty pattern matches all channels.
	ListChannels(ctx context.Context, pattern string) ([]string, error)

	// Subscribers returns the subscriber count for each of the given channels.
	Subscribers(ctx context.Context, channels ...string) (map[string]int64, error)

	// AppendToStream appends an entry to a stream, creating the stream if it
	// does not exist. Returns the server-assigned entry id.
	AppendToStream(ctx context.Context, stream string, values map[string]any) (string, error)

	// ReadStream reads up to count entries from a stream, starting at startID
	// ("-" for the beginning).
	ReadStream(ctx context.Context, stream, startID string, count int64) ([]StreamEntry, error)

	// ListStreams returns the stream keys matching the given pattern.
	ListStreams(ctx context.Context, pattern string) ([]string, error)

	// DeleteStream removes a stream and all its entries. Returns the number
	// of keys removed (0 or 1).
	DeleteStream(ctx context.Context, stream string) (int64, error)
}

type topicsAPI struct {
	client redis.UniversalClient
}

func (t *topicsAPI) Publish(ctx context.Context, channel, message string) (int64, error) {
	n, err := t.client.Publish(ctx, channel, message).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish to channel '%s': %w", channel, err)
	}
	return n, nil
}

func (t *topicsAPI) ListChannels(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	channels, err := t.client.PubSubChannels(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

func (t *topicsAPI) Subscribers(ctx context.Context, channels ...string) (map[string]int64, error) {
	counts, err := t.client.PubSubNumSub(ctx, channels...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber counts: %w", err)
	}
	return counts, nil
}

func (t *topicsAPI) AppendToStream(ctx context.Context, stream string, values map[string]any) (string, error) {
	id, err := t.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append to stream '%s': %w", stream, err)
	}
	return id, nil
}

func (t *topicsAPI) ReadStream(ctx context.Context, stream, startID string, count int64) ([]StreamEntry, error) {
	if startID == "" {
		startID = "-"
	}
	if count <= 0 {
		count = 10
	}
	messages, err := t.client.XRangeN(ctx, stream, startID, "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream '%s': %w", stream, err)
	}

	entries := make([]StreamEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, StreamEntry{ID: msg.ID, Values: msg.Values})
	}
	return entries, nil
}

func (t *topicsAPI) ListStreams(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	var streams []string
	iter := t.client.ScanType(ctx, 0, pattern, 0, "stream").Iterator()
	for iter.Next(ctx) {
		streams = append(streams, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan streams: %w", err)
	}
	return streams, nil
}

func (t *topicsAPI) DeleteStream(ctx context.Context, stream string) (int64, error) {
	n, err := t.client.Del(ctx, stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete stream '%s': %w", stream, err)
	}
	return n, nil
}
