// Package tracing wraps an OpenTelemetry tracer with the span names used
// around Context.GetIndex, SegmentIO calls, and planner evaluation.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an otel trace.Tracer. A nil or zero-value Tracer falls
// back to the global otel tracer provider (a no-op provider unless the
// host has configured one), so instrumentation is always safe to call
// even when no real tracer was configured.
type Tracer struct {
	tracer trace.Tracer
}

// New wraps t. If t is nil, spans are started against the global otel
// tracer provider (a no-op provider unless the host has configured one).
func New(t trace.Tracer) *Tracer {
	if t == nil {
		t = otel.Tracer("github.com/shardbit/shardbit")
	}
	return &Tracer{tracer: t}
}

// Start begins a span named name, used as given.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return otel.Tracer("github.com/shardbit/shardbit").Start(ctx, name, opts...)
	}
	return t.tracer.Start(ctx, name, opts...)
}
