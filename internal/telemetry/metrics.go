package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CustomMetrics records topicmux's own operational metrics.
// A no-op implementation is used when telemetry is disabled.
type CustomMetrics interface {
	RecordToolInvocation(ctx context.Context, tool string, success bool)
	RecordSessionOpened(ctx context.Context)
	RecordSessionClosed(ctx context.Context)
}

// noopCustomMetrics does nothing.
type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns a CustomMetrics that records nothing.
func NewNoopCustomMetrics() CustomMetrics {
	return &noopCustomMetrics{}
}

func (noopCustomMetrics) RecordToolInvocation(context.Context, string, bool) {}
func (noopCustomMetrics) RecordSessionOpened(context.Context)                {}
func (noopCustomMetrics) RecordSessionClosed(context.Context)                {}

// otelCustomMetrics records metrics through an OTel meter.
type otelCustomMetrics struct {
	toolInvocations metric.Int64Counter
	sessionsOpened  metric.Int64Counter
	sessionsClosed  metric.Int64Counter
}

// NewOtelCustomMetrics creates the real CustomMetrics implementation.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	toolInvocations, err := meter.Int64Counter(
		"topicmux.tool.invocations",
		metric.WithDescription("Number of MCP tool invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool invocation counter: %w", err)
	}
	sessionsOpened, err := meter.Int64Counter(
		"topicmux.sessions.opened",
		metric.WithDescription("Number of backing-server sessions opened"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions opened counter: %w", err)
	}
	sessionsClosed, err := meter.Int64Counter(
		"topicmux.sessions.closed",
		metric.WithDescription("Number of backing-server sessions closed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions closed counter: %w", err)
	}

	return &otelCustomMetrics{
		toolInvocations: toolInvocations,
		sessionsOpened:  sessionsOpened,
		sessionsClosed:  sessionsClosed,
	}, nil
}

func (m *otelCustomMetrics) RecordToolInvocation(ctx context.Context, tool string, success bool) {
	m.toolInvocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.Bool("success", success),
	))
}

func (m *otelCustomMetrics) RecordSessionOpened(ctx context.Context) {
	m.sessionsOpened.Add(ctx, 1)
}

func (m *otelCustomMetrics) RecordSessionClosed(ctx context.Context) {
	m.sessionsClosed.Add(ctx, 1)
}
