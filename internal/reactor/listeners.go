package reactor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/stacklok/vsync-reactor/internal/invariant"
	"github.com/stacklok/vsync-reactor/internal/repeater"
)

// AddEventListener starts delivering vsync events to l, phase after each
// vsync. A new listener is anchored at the current time and the tracker's
// current period. Adding a known id restarts its repeater at phase and keeps
// the listener it was first registered with; this is how a removed listener
// is resumed.
//
// A new id beyond MaxListeners fails with ErrResourceExhausted and changes
// nothing.
func (r *Reactor) AddEventListener(id ListenerID, phase time.Duration, l repeater.Listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.listeners[id]
	if !ok {
		if len(r.listeners) >= MaxListeners {
			r.logger.Error("Listener not added, exceeded listener limit",
				"listener", id, "limit", MaxListeners, "current", len(r.listeners))
			return fmt.Errorf("listener %s not added: %w (limit %d)", id, ErrResourceExhausted, MaxListeners)
		}

		var err error
		rep, err = repeater.New(r.dispatcher, l, string(id), r.tracker.CurrentPeriod(), phase, r.clock.Now(),
			repeater.WithMetrics(r.metrics))
		if err != nil {
			return fmt.Errorf("failed to add listener %s: %w", id, err)
		}
		r.listeners[id] = rep
		r.metrics.RecordListeners(context.Background(), len(r.listeners))
		r.logger.Debug("Listener added", "listener", id, "phase", phase)
	}

	rep.Start(phase)
	return nil
}

// RemoveEventListener stops delivering events to id. The listener keeps its
// slot and can be resumed with AddEventListener. Removing an unknown or
// already removed id is a contract violation.
func (r *Reactor) RemoveEventListener(id ListenerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.listeners[id]
	if !ok {
		invariant.Fail("reactor.RemoveEventListener", "listener %s not registered", id)
	}
	rep.Stop()
}

// ChangePhaseOffset restarts id at a new phase. Changing an unknown id is a
// contract violation.
func (r *Reactor) ChangePhaseOffset(id ListenerID, phase time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.listeners[id]
	if !ok {
		invariant.Fail("reactor.ChangePhaseOffset", "listener %s not registered", id)
	}
	rep.Start(phase)
}

// HasListener reports whether id holds a listener slot.
func (r *Reactor) HasListener(id ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.listeners[id]
	return ok
}

// Close releases every listener's dispatcher registration. The reactor must
// not be used afterwards.
func (r *Reactor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, id := range slices.Sorted(maps.Keys(r.listeners)) {
		if err := r.listeners[id].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	clear(r.listeners)
	r.metrics.RecordListeners(context.Background(), 0)
	return errors.Join(errs...)
}
