package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/otel"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/repeater"
)

// ServiceTracerName is the name used for the display service tracer
const ServiceTracerName = "github.com/stacklok/vsync-reactor/service"

// Reactor is the part of *reactor.Reactor the display service needs.
type Reactor interface {
	ComputeNextRefresh(periodOffset int) clock.Time
	ExpectedPresentTime() clock.Time
	Period() time.Duration
	SetPeriod(period time.Duration)
	SetIgnorePresentFences(ignore bool)
	Snapshot() reactor.Snapshot
	Dump() string
}

// ModeSetter applies a refresh period change to the vsync source.
type ModeSetter interface {
	SetPeriod(period time.Duration)
}

// ReadinessProbe reports whether the vsync source is delivering samples.
type ReadinessProbe func(ctx context.Context) error

type displaySvc struct {
	name    string
	reactor Reactor
	clock   clock.Clock
	mode    ModeSetter
	probe   ReadinessProbe
	tracer  trace.Tracer
}

var _ DisplayService = (*displaySvc)(nil)

// Option is a functional option for configuring the display service
type Option func(*displaySvc)

// WithDisplayName sets the display name reported in timing answers and spans
func WithDisplayName(name string) Option {
	return func(s *displaySvc) {
		s.name = name
	}
}

// WithModeSetter forwards accepted period changes to m
func WithModeSetter(m ModeSetter) Option {
	return func(s *displaySvc) {
		s.mode = m
	}
}

// WithReadinessProbe sets the check used by CheckReadiness
func WithReadinessProbe(probe ReadinessProbe) Option {
	return func(s *displaySvc) {
		s.probe = probe
	}
}

// WithTracer sets the OpenTelemetry tracer for the display service.
// A nil tracer disables tracing.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *displaySvc) {
		s.tracer = tracer
	}
}

// New creates a display service over r.
func New(r Reactor, clk clock.Clock, opts ...Option) (DisplayService, error) {
	if r == nil {
		return nil, fmt.Errorf("reactor is required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}

	s := &displaySvc{
		name:    "default",
		reactor: r,
		clock:   clk,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *displaySvc) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := otel.StartSpan(ctx, s.tracer, name)
	span.SetAttributes(otel.AttrDisplayName.String(s.name))
	return ctx, span
}

// CheckReadiness implements DisplayService.CheckReadiness
func (s *displaySvc) CheckReadiness(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "displaySvc.CheckReadiness")
	defer span.End()

	if s.probe == nil {
		return nil
	}
	if err := s.probe(ctx); err != nil {
		err = fmt.Errorf("%w: %v", ErrNotReady, err)
		otel.RecordError(span, err)
		return err
	}
	return nil
}

// Timing implements DisplayService.Timing
func (s *displaySvc) Timing(ctx context.Context, periodOffset int) (*Timing, error) {
	_, span := s.startSpan(ctx, "displaySvc.Timing")
	defer span.End()

	span.SetAttributes(otel.AttrPeriodOffset.Int(periodOffset))
	if periodOffset < -MaxPeriodOffset || periodOffset > MaxPeriodOffset {
		err := fmt.Errorf("%w: %d is outside [-%d, %d]",
			ErrInvalidPeriodOffset, periodOffset, MaxPeriodOffset, MaxPeriodOffset)
		otel.RecordError(span, err)
		return nil, err
	}

	timing := &Timing{
		DisplayName:         s.name,
		Period:              s.reactor.Period(),
		PeriodOffset:        periodOffset,
		Now:                 s.clock.Now(),
		NextRefresh:         s.reactor.ComputeNextRefresh(periodOffset),
		ExpectedPresentTime: s.reactor.ExpectedPresentTime(),
	}
	span.SetAttributes(otel.Period(timing.Period))
	return timing, nil
}

// SetPeriod implements DisplayService.SetPeriod
func (s *displaySvc) SetPeriod(ctx context.Context, period time.Duration) error {
	ctx, span := s.startSpan(ctx, "displaySvc.SetPeriod")
	defer span.End()

	span.SetAttributes(otel.Period(period))
	if period <= 0 {
		err := fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
		otel.RecordError(span, err)
		return err
	}

	s.reactor.SetPeriod(period)
	if s.mode != nil {
		s.mode.SetPeriod(period)
	}
	slog.InfoContext(ctx, "Refresh period requested",
		"display", s.name,
		"period", period,
		"request_id", middleware.GetReqID(ctx))
	return nil
}

// SetIgnorePresentFences implements DisplayService.SetIgnorePresentFences
func (s *displaySvc) SetIgnorePresentFences(ctx context.Context, ignore bool) error {
	ctx, span := s.startSpan(ctx, "displaySvc.SetIgnorePresentFences")
	defer span.End()

	span.SetAttributes(otel.AttrIgnoreFences.Bool(ignore))
	s.reactor.SetIgnorePresentFences(ignore)
	slog.InfoContext(ctx, "Present fence refinement updated",
		"display", s.name,
		"ignore", ignore,
		"request_id", middleware.GetReqID(ctx))
	return nil
}

// Listeners implements DisplayService.Listeners
func (s *displaySvc) Listeners(ctx context.Context) ([]repeater.State, error) {
	_, span := s.startSpan(ctx, "displaySvc.Listeners")
	defer span.End()

	listeners := s.reactor.Snapshot().Listeners
	span.SetAttributes(otel.AttrListenerCount.Int(len(listeners)))
	return listeners, nil
}

// State implements DisplayService.State
func (s *displaySvc) State(ctx context.Context) (*reactor.Snapshot, error) {
	_, span := s.startSpan(ctx, "displaySvc.State")
	defer span.End()

	snap := s.reactor.Snapshot()
	span.SetAttributes(otel.Period(snap.Period), otel.AttrListenerCount.Int(len(snap.Listeners)))
	return &snap, nil
}

// Dump implements DisplayService.Dump
func (s *displaySvc) Dump(ctx context.Context) (string, error) {
	_, span := s.startSpan(ctx, "displaySvc.Dump")
	defer span.End()

	return s.reactor.Dump(), nil
}
