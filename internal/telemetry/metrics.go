// Package telemetry provides OpenTelemetry instrumentation for the vsync reactor.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ReactorMetricsMeterName is the name used for the reactor metrics meter
	ReactorMetricsMeterName = "github.com/stacklok/vsync-reactor/reactor"
)

// Fence outcomes recorded by RecordFence
const (
	FenceOutcomeSettled = "settled"
	FenceOutcomeQueued  = "queued"
	FenceOutcomeDropped = "dropped"
	FenceOutcomeEvicted = "evicted"
	FenceOutcomeIgnored = "ignored"
)

// Period transition events recorded by RecordTransition
const (
	TransitionStarted   = "started"
	TransitionCommitted = "committed"
	TransitionAborted   = "aborted"
)

// ReactorMetrics holds the OpenTelemetry instruments for the vsync reactor
type ReactorMetrics struct {
	fencesTotal         metric.Int64Counter
	resyncSamplesTotal  metric.Int64Counter
	transitionsTotal    metric.Int64Counter
	listenerEventsTotal metric.Int64Counter
	fenceBacklog        metric.Int64Gauge
	listeners           metric.Int64Gauge
	period              metric.Float64Gauge
}

// NewReactorMetrics creates a new ReactorMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewReactorMetrics(provider metric.MeterProvider) (*ReactorMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ReactorMetricsMeterName)

	fencesTotal, err := meter.Int64Counter(
		"vsync_reactor_present_fences_total",
		metric.WithDescription("Present fences processed by the reactor, by outcome"),
		metric.WithUnit("{fence}"),
	)
	if err != nil {
		return nil, err
	}

	resyncSamplesTotal, err := meter.Int64Counter(
		"vsync_reactor_resync_samples_total",
		metric.WithDescription("Hardware vsync samples fed to the reactor"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, err
	}

	transitionsTotal, err := meter.Int64Counter(
		"vsync_reactor_period_transitions_total",
		metric.WithDescription("Refresh period transitions, by event"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	listenerEventsTotal, err := meter.Int64Counter(
		"vsync_reactor_listener_events_total",
		metric.WithDescription("Vsync events delivered to listeners"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	fenceBacklog, err := meter.Int64Gauge(
		"vsync_reactor_fence_backlog",
		metric.WithDescription("Unsettled present fences held by the reactor"),
		metric.WithUnit("{fence}"),
	)
	if err != nil {
		return nil, err
	}

	listeners, err := meter.Int64Gauge(
		"vsync_reactor_listeners",
		metric.WithDescription("Registered vsync listeners"),
		metric.WithUnit("{listener}"),
	)
	if err != nil {
		return nil, err
	}

	period, err := meter.Float64Gauge(
		"vsync_reactor_period_seconds",
		metric.WithDescription("Current refresh period"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ReactorMetrics{
		fencesTotal:         fencesTotal,
		resyncSamplesTotal:  resyncSamplesTotal,
		transitionsTotal:    transitionsTotal,
		listenerEventsTotal: listenerEventsTotal,
		fenceBacklog:        fenceBacklog,
		listeners:           listeners,
		period:              period,
	}, nil
}

// RecordFence counts a present fence with the given outcome
func (m *ReactorMetrics) RecordFence(ctx context.Context, outcome string) {
	if m == nil || m.fencesTotal == nil {
		return
	}
	m.fencesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordResyncSample counts a hardware vsync sample
func (m *ReactorMetrics) RecordResyncSample(ctx context.Context, inTransition bool) {
	if m == nil || m.resyncSamplesTotal == nil {
		return
	}
	m.resyncSamplesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("in_transition", inTransition)))
}

// RecordTransition counts a period transition event
func (m *ReactorMetrics) RecordTransition(ctx context.Context, event string) {
	if m == nil || m.transitionsTotal == nil {
		return
	}
	m.transitionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

// RecordListenerEvent counts a vsync event delivered to a listener
func (m *ReactorMetrics) RecordListenerEvent(ctx context.Context, listener string) {
	if m == nil || m.listenerEventsTotal == nil {
		return
	}
	m.listenerEventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("listener", listener)))
}

// RecordFenceBacklog records the current backlog length
func (m *ReactorMetrics) RecordFenceBacklog(ctx context.Context, length int) {
	if m == nil || m.fenceBacklog == nil {
		return
	}
	m.fenceBacklog.Record(ctx, int64(length))
}

// RecordListeners records the current number of registered listeners
func (m *ReactorMetrics) RecordListeners(ctx context.Context, count int) {
	if m == nil || m.listeners == nil {
		return
	}
	m.listeners.Record(ctx, int64(count))
}

// RecordPeriod records the current refresh period
func (m *ReactorMetrics) RecordPeriod(ctx context.Context, period time.Duration) {
	if m == nil || m.period == nil {
		return
	}
	m.period.Record(ctx, period.Seconds())
}
