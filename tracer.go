package authgate

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Tracer is a generic tracing interface for the middleware.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is one traced token check.
type Span interface {
	SetTag(key, value string)
	End()
}

// NoopTracer is the default tracer; it records nothing.
type NoopTracer struct{}

func (t *NoopTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &NoopSpan{}
}

type NoopSpan struct{}

func (s *NoopSpan) SetTag(key, value string) {}
func (s *NoopSpan) End()                     {}

// NewOpenTelemetryTracer returns a Tracer backed by OpenTelemetry.
func NewOpenTelemetryTracer(tracer oteltrace.Tracer) Tracer {
	return &openTelemetryTracer{tracer: tracer}
}

type openTelemetryTracer struct {
	tracer oteltrace.Tracer
}

func (t *openTelemetryTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &openTelemetrySpan{span: span}
}

type openTelemetrySpan struct {
	span oteltrace.Span
}

func (s *openTelemetrySpan) SetTag(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *openTelemetrySpan) End() {
	s.span.End()
}
