// Package otel holds span helpers and the attribute keys shared by the
// traced display service operations.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for display timing spans
const (
	AttrDisplayName   = attribute.Key("display.name")
	AttrPeriodNanos   = attribute.Key("display.period_ns")
	AttrPeriodOffset  = attribute.Key("display.period_offset")
	AttrListenerName  = attribute.Key("listener.name")
	AttrPhaseNanos    = attribute.Key("listener.phase_ns")
	AttrIgnoreFences  = attribute.Key("reactor.ignore_present_fences")
	AttrListenerCount = attribute.Key("result.listener_count")
)

// Period returns a period attribute in nanoseconds.
func Period(d time.Duration) attribute.KeyValue {
	return AttrPeriodNanos.Int64(d.Nanoseconds())
}

// Phase returns a listener phase attribute in nanoseconds.
func Phase(d time.Duration) attribute.KeyValue {
	return AttrPhaseNanos.Int64(d.Nanoseconds())
}

// StartSpan starts a span on tracer, or returns the span already in ctx
// when tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it failed. The status
// description stays generic; details live in the recorded event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
