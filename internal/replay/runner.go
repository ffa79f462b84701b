package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/dispatch"
	"github.com/stacklok/vsync-reactor/internal/fence"
	"github.com/stacklok/vsync-reactor/internal/invariant"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/repeater"
	"github.com/stacklok/vsync-reactor/internal/telemetry"
	"github.com/stacklok/vsync-reactor/internal/tracker"
)

// Firing is one listener callback
type Firing struct {
	Listener string     `json:"listener"`
	Wakeup   clock.Time `json:"wakeup_ns"`
}

// Outcome is the observable result of one event
type Outcome struct {
	Index  int        `json:"index"`
	At     clock.Time `json:"at_ns"`
	Kind   string     `json:"kind"`
	Detail string     `json:"detail"`
}

// Result is everything a replay produced, in time order
type Result struct {
	Firings  []Firing         `json:"firings"`
	Outcomes []Outcome        `json:"outcomes"`
	Final    reactor.Snapshot `json:"final"`
}

// Option configures a replay run
type Option func(*runner)

// WithLogger sets the logger handed to the reactor
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// WithMetrics records reactor activity of the replay on m
func WithMetrics(m *telemetry.ReactorMetrics) Option {
	return func(r *runner) {
		r.metrics = m
	}
}

type runner struct {
	logger  *slog.Logger
	metrics *telemetry.ReactorMetrics

	clock   *clock.FakeClock
	reactor *reactor.Reactor
	fences  map[string]*fence.Time
	result  *Result
}

// Run replays trace on a fake clock starting at time zero. Listener firings
// between events are delivered as the clock reaches them.
//
// A contract violation triggered by the trace, such as removing a listener
// twice, stops the replay and is returned as an error wrapping the
// *invariant.Violation.
func Run(ctx context.Context, trace *Trace, opts ...Option) (_ *Result, retErr error) {
	if err := trace.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trace: %w", err)
	}

	run := &runner{
		logger: slog.Default(),
		clock:  clock.Fake(0),
		fences: make(map[string]*fence.Time),
		result: &Result{},
	}
	for _, opt := range opts {
		opt(run)
	}

	tr := tracker.NewFixed(trace.Display.Period)
	var dispatchOpts []dispatch.Option
	if trace.Display.MinVsyncDistance > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithMinVsyncDistance(trace.Display.MinVsyncDistance))
	}
	td := dispatch.NewTimerDispatcher(run.clock, tr, dispatchOpts...)
	run.reactor = reactor.New(run.clock, td, tr, trace.Display.PendingFenceLimit,
		reactor.WithLogger(run.logger),
		reactor.WithMetrics(run.metrics))
	defer func() {
		if err := run.reactor.Close(); err != nil {
			retErr = errors.Join(retErr, fmt.Errorf("failed to release listeners: %w", err))
		}
	}()

	for i, l := range trace.Listeners {
		if err := run.reactor.AddEventListener(reactor.ListenerID(l.Name), l.PhaseOffset, run.listener(l.Name)); err != nil {
			return nil, fmt.Errorf("listeners[%d]: %w", i, err)
		}
	}

	for i := range trace.Events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev := &trace.Events[i]
		run.clock.Set(at(ev.At))

		outcome, err := run.apply(i, ev)
		if err != nil {
			return nil, fmt.Errorf("events[%d] (%s): %w", i, ev.Kinds()[0], err)
		}
		run.logger.Debug("Replayed event", "index", i, "at", ev.At, "kind", outcome.Kind, "detail", outcome.Detail)
		run.result.Outcomes = append(run.result.Outcomes, outcome)
	}

	if trace.Until > 0 {
		run.clock.Set(at(trace.Until))
	}
	run.result.Final = run.reactor.Snapshot()
	return run.result, nil
}

func at(d time.Duration) clock.Time {
	return clock.Time(d.Nanoseconds())
}

func (run *runner) listener(name string) repeater.Listener {
	return repeater.ListenerFunc(func(wakeup clock.Time) {
		run.result.Firings = append(run.result.Firings, Firing{Listener: name, Wakeup: wakeup})
	})
}

// apply runs one event. Contract violations are returned as errors.
func (run *runner) apply(index int, ev *Event) (outcome Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, ok := p.(*invariant.Violation)
			if !ok {
				panic(p)
			}
			err = v
		}
	}()

	outcome = Outcome{Index: index, At: run.clock.Now(), Kind: ev.Kinds()[0]}
	r := run.reactor

	switch outcome.Kind {
	case KindResync:
		wants, flushed := r.AddResyncSample(outcome.At)
		outcome.Detail = fmt.Sprintf("wantsMoreSamples=%t periodFlushed=%t", wants, flushed)
	case KindFence:
		more := r.AddPresentFence(run.fence(ev.Fence))
		outcome.Detail = fmt.Sprintf("%s moreSamplesNeeded=%t", ev.Fence, more)
	case KindSignal:
		f := run.fence(ev.Signal.Fence)
		changed := f.Signal(at(ev.Signal.Time))
		outcome.Detail = fmt.Sprintf("%s signaled=%t", ev.Signal.Fence, changed)
	case KindInvalidate:
		changed := run.fence(ev.Invalidate).Invalidate()
		outcome.Detail = fmt.Sprintf("%s invalidated=%t", ev.Invalidate, changed)
	case KindSetPeriod:
		r.SetPeriod(ev.SetPeriod)
		snap := r.Snapshot()
		outcome.Detail = fmt.Sprintf("period=%v transitioning=%t", snap.Period, snap.TransitioningTo != nil)
	case KindPhaseOffset:
		r.ChangePhaseOffset(reactor.ListenerID(ev.PhaseOffset.Listener), ev.PhaseOffset.Offset)
		outcome.Detail = fmt.Sprintf("%s phase=%v", ev.PhaseOffset.Listener, ev.PhaseOffset.Offset)
	case KindAddListener:
		err := r.AddEventListener(reactor.ListenerID(ev.AddListener.Name), ev.AddListener.PhaseOffset,
			run.listener(ev.AddListener.Name))
		switch {
		case errors.Is(err, reactor.ErrResourceExhausted):
			outcome.Detail = fmt.Sprintf("%s rejected: %v", ev.AddListener.Name, err)
		case err != nil:
			return outcome, err
		default:
			outcome.Detail = fmt.Sprintf("%s phase=%v", ev.AddListener.Name, ev.AddListener.PhaseOffset)
		}
	case KindRemoveListener:
		r.RemoveEventListener(reactor.ListenerID(ev.RemoveListener))
		outcome.Detail = ev.RemoveListener
	case KindIgnoreFences:
		r.SetIgnorePresentFences(*ev.IgnoreFences)
		outcome.Detail = fmt.Sprintf("ignore=%t", *ev.IgnoreFences)
	}
	return outcome, nil
}

// fence returns the named fence, creating a pending one the first time a
// name appears. Signalling a fence before submitting it submits a settled
// fence later.
func (run *runner) fence(name string) *fence.Time {
	f, ok := run.fences[name]
	if !ok {
		f = fence.NewPending()
		run.fences[name] = f
	}
	return f
}
