package dispatch

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/tracker"
)

// DefaultMinVsyncDistance is the window around the last dispatched vsync in
// which a new target counts as the same vsync.
const DefaultMinVsyncDistance = 2 * time.Millisecond

// TimerDispatcher arms one clock timer per registration. Target vsyncs come
// from the tracker; wakeups are the target minus the workload.
type TimerDispatcher struct {
	clock            clock.TimerClock
	tracker          tracker.Tracker
	minVsyncDistance time.Duration

	mu            sync.Mutex
	registrations map[uuid.UUID]*timerRegistration
}

// Option configures a TimerDispatcher
type Option func(*TimerDispatcher)

// WithMinVsyncDistance sets the same-vsync window used to avoid dispatching
// a registration twice for one vsync.
func WithMinVsyncDistance(d time.Duration) Option {
	return func(td *TimerDispatcher) {
		td.minVsyncDistance = d
	}
}

// NewTimerDispatcher creates a dispatcher driven by clk and tr.
func NewTimerDispatcher(clk clock.TimerClock, tr tracker.Tracker, opts ...Option) *TimerDispatcher {
	td := &TimerDispatcher{
		clock:            clk,
		tracker:          tr,
		minVsyncDistance: DefaultMinVsyncDistance,
		registrations:    make(map[uuid.UUID]*timerRegistration),
	}
	for _, opt := range opts {
		opt(td)
	}
	return td
}

// Register implements Dispatcher.
func (td *TimerDispatcher) Register(name string, cb Callback) (Registration, error) {
	if cb == nil {
		return nil, ErrNilCallback
	}

	reg := &timerRegistration{
		dispatcher: td,
		id:         uuid.New(),
		name:       name,
		callback:   cb,
	}

	td.mu.Lock()
	td.registrations[reg.id] = reg
	td.mu.Unlock()

	slog.Debug("Registered vsync callback", "name", name, "id", reg.id)
	return reg, nil
}

// Registrations returns the number of live registrations.
func (td *TimerDispatcher) Registrations() int {
	td.mu.Lock()
	defer td.mu.Unlock()
	return len(td.registrations)
}

func (td *TimerDispatcher) unregister(id uuid.UUID) {
	td.mu.Lock()
	defer td.mu.Unlock()
	delete(td.registrations, id)
}

type timerRegistration struct {
	dispatcher *TimerDispatcher
	id         uuid.UUID
	name       string
	callback   Callback

	mu     sync.Mutex
	closed bool
	timer  clock.Timer
	// generation invalidates timers that were replaced or cancelled but
	// could not be stopped before their callback started.
	generation   uint64
	armed        bool
	armedVsync   clock.Time
	armedWakeup  clock.Time
	dispatched   bool
	lastDispatch clock.Time
}

func (r *timerRegistration) ID() uuid.UUID {
	return r.id
}

func (r *timerRegistration) Name() string {
	return r.name
}

func (r *timerRegistration) Schedule(workload time.Duration, earliestVsync clock.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistrationClosed
	}

	td := r.dispatcher
	now := td.clock.Now()
	target := td.tracker.NextAnticipatedVSyncTimeFrom(clock.Max(earliestVsync, now.Add(workload)))

	if r.dispatched && r.sameVsync(target) {
		skip := td.minVsyncDistance
		if skip <= 0 {
			skip = 1
		}
		target = td.tracker.NextAnticipatedVSyncTimeFrom(r.lastDispatch.Add(skip))
	}
	wakeup := target.Add(-workload)

	r.disarmLocked()
	r.generation++
	generation := r.generation
	r.armed = true
	r.armedVsync = target
	r.armedWakeup = wakeup

	delay := wakeup.Sub(now)
	if delay < 0 {
		delay = 0
	}
	r.timer = td.clock.AfterFunc(delay, func() { r.fire(generation) })
	return nil
}

func (r *timerRegistration) sameVsync(target clock.Time) bool {
	distance := target.Sub(r.lastDispatch)
	if distance < 0 {
		distance = -distance
	}
	return distance <= r.dispatcher.minVsyncDistance
}

func (r *timerRegistration) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmLocked()
	r.generation++
}

func (r *timerRegistration) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.disarmLocked()
	r.generation++
	r.mu.Unlock()

	r.dispatcher.unregister(r.id)
	slog.Debug("Released vsync callback", "name", r.name, "id", r.id)
	return nil
}

// disarmLocked must be called with r.mu held.
func (r *timerRegistration) disarmLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.armed = false
}

func (r *timerRegistration) fire(generation uint64) {
	r.mu.Lock()
	if r.closed || !r.armed || generation != r.generation {
		r.mu.Unlock()
		return
	}
	vsync, wakeup := r.armedVsync, r.armedWakeup
	r.armed = false
	r.timer = nil
	r.dispatched = true
	r.lastDispatch = vsync
	cb := r.callback
	r.mu.Unlock()

	cb(vsync, wakeup)
}
