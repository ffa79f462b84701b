// Package reactor reconciles hardware vsync samples and present fences with
// the vsync tracker, detects refresh period changes, and drives the per
// listener repeaters.
package reactor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/dispatch"
	"github.com/stacklok/vsync-reactor/internal/fence"
	"github.com/stacklok/vsync-reactor/internal/invariant"
	"github.com/stacklok/vsync-reactor/internal/repeater"
	"github.com/stacklok/vsync-reactor/internal/telemetry"
	"github.com/stacklok/vsync-reactor/internal/tracker"
)

// MaxListeners is the number of distinct listeners a Reactor accepts.
const MaxListeners = 3

// ErrResourceExhausted is returned when a new listener would exceed MaxListeners.
var ErrResourceExhausted = errors.New("resource exhausted")

// ListenerID identifies a listener across AddEventListener,
// RemoveEventListener and ChangePhaseOffset calls.
type ListenerID string

// Reactor is safe for concurrent use. None of its methods block on the
// clock, the dispatcher or a fence.
type Reactor struct {
	clock             clock.Clock
	dispatcher        dispatch.Dispatcher
	tracker           tracker.Tracker
	pendingFenceLimit int
	metrics           *telemetry.ReactorMetrics
	logger            *slog.Logger

	mu sync.Mutex
	// unfiredFences holds fence.Fence values, oldest first.
	unfiredFences         *queue.Queue
	ignorePresentFences   bool
	transitioning         bool
	periodTransitioningTo time.Duration
	hasLastHwVsync        bool
	lastHwVsync           clock.Time
	moreSamplesNeeded     bool
	listeners             map[ListenerID]*repeater.Repeater
}

// Option configures a Reactor
type Option func(*Reactor)

// WithMetrics records reactor activity on m.
func WithMetrics(m *telemetry.ReactorMetrics) Option {
	return func(r *Reactor) {
		r.metrics = m
	}
}

// WithLogger sets the logger used for reactor events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reactor) {
		r.logger = logger
	}
}

// New creates a Reactor that keeps at most pendingFenceLimit unsettled
// present fences.
func New(
	clk clock.Clock,
	d dispatch.Dispatcher,
	t tracker.Tracker,
	pendingFenceLimit int,
	opts ...Option,
) *Reactor {
	invariant.Failf(pendingFenceLimit < 1, "reactor.New",
		"pending fence limit must be at least 1, got %d", pendingFenceLimit)

	r := &Reactor{
		clock:             clk,
		dispatcher:        d,
		tracker:           t,
		pendingFenceLimit: pendingFenceLimit,
		logger:            slog.Default(),
		unfiredFences:     queue.New(),
		listeners:         make(map[ListenerID]*repeater.Repeater),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddPresentFence feeds a present fence into the vsync model and reports
// whether more samples are wanted.
//
// Unsettled fences from earlier calls are polled first: settled ones are
// forwarded to the tracker in arrival order and invalid ones are dropped. A
// pending f joins the backlog, evicting the oldest entry when full; a
// settled f is forwarded directly. An invalid f is not processed at all.
func (r *Reactor) AddPresentFence(f fence.Fence) bool {
	if f == nil {
		return false
	}

	ctx := context.Background()
	signalTime := f.SignalTime()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ignorePresentFences {
		r.metrics.RecordFence(ctx, telemetry.FenceOutcomeIgnored)
		return false
	}
	if fence.IsInvalid(signalTime) {
		r.metrics.RecordFence(ctx, telemetry.FenceOutcomeDropped)
		return true
	}

	r.drainFencesLocked(ctx)

	if fence.IsPending(signalTime) {
		if r.unfiredFences.Length() >= r.pendingFenceLimit {
			r.unfiredFences.Remove()
			r.metrics.RecordFence(ctx, telemetry.FenceOutcomeEvicted)
		}
		r.unfiredFences.Add(f)
		r.metrics.RecordFence(ctx, telemetry.FenceOutcomeQueued)
	} else {
		r.tracker.AddVsyncTimestamp(signalTime)
		r.metrics.RecordFence(ctx, telemetry.FenceOutcomeSettled)
	}
	r.metrics.RecordFenceBacklog(ctx, r.unfiredFences.Length())

	return r.moreSamplesNeeded
}

// drainFencesLocked must be called with r.mu held.
func (r *Reactor) drainFencesLocked(ctx context.Context) {
	for n := r.unfiredFences.Length(); n > 0; n-- {
		queued := r.unfiredFences.Remove().(fence.Fence)
		signalTime := queued.SignalTime()
		switch {
		case fence.IsPending(signalTime):
			r.unfiredFences.Add(queued)
		case fence.IsInvalid(signalTime):
			r.metrics.RecordFence(ctx, telemetry.FenceOutcomeDropped)
		default:
			r.tracker.AddVsyncTimestamp(signalTime)
			r.metrics.RecordFence(ctx, telemetry.FenceOutcomeSettled)
		}
	}
}

// SetIgnorePresentFences suspends or resumes fence refinement. Suspending
// abandons every unsettled fence in the backlog.
func (r *Reactor) SetIgnorePresentFences(ignore bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ignorePresentFences = ignore
	if ignore {
		if n := r.unfiredFences.Length(); n > 0 {
			r.logger.Debug("Abandoning unsettled present fences", "count", n)
		}
		r.unfiredFences = queue.New()
		r.metrics.RecordFenceBacklog(context.Background(), 0)
	}
}

// ComputeNextRefresh returns the first anticipated vsync at or after now
// plus periodOffset periods.
func (r *Reactor) ComputeNextRefresh(periodOffset int) clock.Time {
	now := r.clock.Now()
	var period time.Duration
	if periodOffset != 0 {
		period = r.tracker.CurrentPeriod()
	}
	return r.tracker.NextAnticipatedVSyncTimeFrom(now.Add(time.Duration(periodOffset) * period))
}

// ExpectedPresentTime returns the first anticipated vsync at or after now.
func (r *Reactor) ExpectedPresentTime() clock.Time {
	return r.tracker.NextAnticipatedVSyncTimeFrom(r.clock.Now())
}

// SetPeriod requests a refresh period change. The change is committed by
// AddResyncSample once hardware vsyncs confirm it. Requesting the current
// period abandons any transition in flight.
func (r *Reactor) SetPeriod(period time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()
	r.hasLastHwVsync = false
	if period == r.tracker.CurrentPeriod() {
		if r.transitioning {
			r.logger.Info("Period transition abandoned", "target", r.periodTransitioningTo, "period", period)
			r.metrics.RecordTransition(ctx, telemetry.TransitionAborted)
		}
		r.endPeriodTransitionLocked()
		return
	}

	r.logger.Info("Period transition started", "from", r.tracker.CurrentPeriod(), "to", period)
	r.metrics.RecordTransition(ctx, telemetry.TransitionStarted)
	r.transitioning = true
	r.periodTransitioningTo = period
	r.moreSamplesNeeded = true
}

// Period returns the tracker's current period.
func (r *Reactor) Period() time.Duration {
	return r.tracker.CurrentPeriod()
}

// AddResyncSample feeds a hardware vsync timestamp. While a period
// transition is in flight, each sample is compared with the previous one: if
// the interval is strictly closer to the target period than to the current
// one, the target is committed to the tracker and every listener.
//
// It reports whether more samples are wanted and whether a new period was
// committed. The timestamp always reaches the tracker, after any commit.
func (r *Reactor) AddResyncSample(ts clock.Time) (wantsMoreSamples, periodFlushed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()
	inTransition := r.transitioning

	switch {
	case r.periodChangeDetectedLocked(ts):
		target := r.periodTransitioningTo
		r.tracker.SetPeriod(target)
		for _, rep := range r.listeners {
			rep.SetPeriod(target)
		}
		r.endPeriodTransitionLocked()
		periodFlushed = true

		r.logger.Info("Period transition committed", "period", target, "sample", ts)
		r.metrics.RecordTransition(ctx, telemetry.TransitionCommitted)
		r.metrics.RecordPeriod(ctx, target)
	case r.transitioning:
		r.lastHwVsync = ts
		r.hasLastHwVsync = true
		r.moreSamplesNeeded = true
	default:
		r.moreSamplesNeeded = false
	}

	r.tracker.AddVsyncTimestamp(ts)
	r.metrics.RecordResyncSample(ctx, inTransition)
	return r.moreSamplesNeeded, periodFlushed
}

// periodChangeDetectedLocked must be called with r.mu held.
func (r *Reactor) periodChangeDetectedLocked(ts clock.Time) bool {
	if !r.transitioning || !r.hasLastHwVsync {
		return false
	}
	distance := ts.Sub(r.lastHwVsync)
	return abs(distance-r.periodTransitioningTo) < abs(distance-r.tracker.CurrentPeriod())
}

// endPeriodTransitionLocked must be called with r.mu held.
func (r *Reactor) endPeriodTransitionLocked() {
	r.transitioning = false
	r.periodTransitioningTo = 0
	r.hasLastHwVsync = false
	r.lastHwVsync = 0
	r.moreSamplesNeeded = false
}

// BeginResync is called when hardware vsync sampling is turned on. The
// reactor keeps no per-resync state.
func (*Reactor) BeginResync() {}

// EndResync is called when hardware vsync sampling is turned off.
func (*Reactor) EndResync() {}

// Reset is a hook for the scheduler's reset path; the reactor keeps its
// state across resets.
func (*Reactor) Reset() {}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
