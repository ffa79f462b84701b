// Package repeater turns one-shot dispatcher registrations into a periodic
// per-listener vsync signal fired at a phase offset.
package repeater

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/dispatch"
	"github.com/stacklok/vsync-reactor/internal/invariant"
	"github.com/stacklok/vsync-reactor/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_listener.go -package=mocks -source=repeater.go Listener

// Listener receives one event per vsync.
type Listener interface {
	// OnVsyncEvent is called with the time the firing was scheduled to
	// wake up. It runs on the dispatcher's goroutine.
	OnVsyncEvent(wakeup clock.Time)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(wakeup clock.Time)

// OnVsyncEvent calls f(wakeup).
func (f ListenerFunc) OnVsyncEvent(wakeup clock.Time) {
	f(wakeup)
}

// State is a point-in-time view of a Repeater.
type State struct {
	Name         string        `json:"name"`
	Period       time.Duration `json:"period"`
	Phase        time.Duration `json:"phase"`
	LastCallTime clock.Time    `json:"lastCallTime"`
	Running      bool          `json:"running"`
}

// Repeater re-arms its registration after every firing so that the listener
// is called once per vsync, phase after it.
//
// Phase offsets are measured after a vsync while dispatcher workloads are
// measured before the target vsync, so the workload is period - phase.
type Repeater struct {
	name         string
	listener     Listener
	registration dispatch.Registration
	metrics      *telemetry.ReactorMetrics

	mu           sync.Mutex
	period       time.Duration
	phase        time.Duration
	lastCallTime clock.Time
	running      bool
	closed       bool
}

// Option configures a Repeater
type Option func(*Repeater)

// WithMetrics counts listener events on m.
func WithMetrics(m *telemetry.ReactorMetrics) Option {
	return func(r *Repeater) {
		r.metrics = m
	}
}

// New registers a repeater for l with d. The repeater is idle until Start is
// called; its first firing is anchored at notBefore.
func New(
	d dispatch.Dispatcher,
	l Listener,
	name string,
	period, phase time.Duration,
	notBefore clock.Time,
	opts ...Option,
) (*Repeater, error) {
	if l == nil {
		return nil, fmt.Errorf("repeater %s: listener is required", name)
	}

	r := &Repeater{
		name:         name,
		listener:     l,
		period:       period,
		phase:        phase,
		lastCallTime: notBefore,
	}
	for _, opt := range opts {
		opt(r)
	}

	registration, err := d.Register(name, r.onVsync)
	if err != nil {
		return nil, fmt.Errorf("failed to register repeater %s: %w", name, err)
	}
	r.registration = registration
	return r, nil
}

// Name returns the name the repeater was registered with.
func (r *Repeater) Name() string {
	return r.name
}

// Start sets the phase and arms the next firing from the last call time.
// Starting a running repeater re-arms it at the new phase.
func (r *Repeater) Start(phase time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.phase = phase
	r.running = true
	if err := r.registration.Schedule(r.workloadLocked(), r.lastCallTime); err != nil {
		invariant.Fail("repeater.Start", "error scheduling %s: %v", r.name, err)
	}
}

// SetPeriod stores the period used for the next re-arm. An armed firing
// keeps the workload it was scheduled with.
func (r *Repeater) SetPeriod(period time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.period = period
}

// Stop disarms the repeater. Stopping a stopped repeater is a contract
// violation. A firing that has already started still reaches the listener
// but is not re-armed.
func (r *Repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		invariant.Fail("repeater.Stop", "%s already stopped", r.name)
	}
	r.running = false
	r.registration.Cancel()
}

// Close stops the repeater and releases its registration. Close is
// idempotent.
func (r *Repeater) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.running = false
	if err := r.registration.Close(); err != nil {
		return fmt.Errorf("failed to release repeater %s: %w", r.name, err)
	}
	return nil
}

// State returns a snapshot of the repeater.
func (r *Repeater) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Name:         r.name,
		Period:       r.period,
		Phase:        r.phase,
		LastCallTime: r.lastCallTime,
		Running:      r.running,
	}
}

func (r *Repeater) onVsync(vsync, wakeup clock.Time) {
	r.mu.Lock()
	r.lastCallTime = vsync
	r.mu.Unlock()

	r.listener.OnVsyncEvent(wakeup)
	r.metrics.RecordListenerEvent(context.Background(), r.name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		slog.Debug("Repeater stopped during firing, not re-arming", "name", r.name, "vsync", vsync)
		return
	}
	if err := r.registration.Schedule(r.workloadLocked(), vsync); err != nil {
		invariant.Fail("repeater.onVsync", "error rescheduling %s: %v", r.name, err)
	}
}

// workloadLocked must be called with r.mu held.
func (r *Repeater) workloadLocked() time.Duration {
	return r.period - r.phase
}
