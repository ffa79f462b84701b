package app

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/config"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/repeater"
)

//go:generate mockgen -destination=mocks/mock_applier.go -package=mocks -source=applier.go Target,PeriodSetter

// Target is the part of *reactor.Reactor driven by configuration
type Target interface {
	AddEventListener(id reactor.ListenerID, phase time.Duration, l repeater.Listener) error
	RemoveEventListener(id reactor.ListenerID)
	ChangePhaseOffset(id reactor.ListenerID, phase time.Duration)
	SetPeriod(period time.Duration)
	SetIgnorePresentFences(ignore bool)
}

// PeriodSetter retunes the vsync source after a period change
type PeriodSetter interface {
	SetPeriod(period time.Duration)
}

// ListenerFactory builds the callback registered for a configured listener
type ListenerFactory func(name string) repeater.Listener

// Applier reconciles the reactor with the configuration. It remembers what it
// applied last, so every call only issues the operations needed to reach the
// new configuration.
type Applier struct {
	target      Target
	source      PeriodSetter
	newListener ListenerFactory

	mu      sync.Mutex
	period  time.Duration
	ignore  bool
	running map[string]time.Duration
	// slots holds every name ever registered; the reactor keeps a removed
	// listener's slot for good.
	slots map[string]struct{}
}

// NewApplier creates an applier for a reactor already running at period.
// The source may be nil.
func NewApplier(target Target, source PeriodSetter, period time.Duration, newListener ListenerFactory) *Applier {
	if newListener == nil {
		newListener = logListener
	}
	return &Applier{
		target:      target,
		source:      source,
		newListener: newListener,
		period:      period,
		running:     make(map[string]time.Duration),
		slots:       make(map[string]struct{}),
	}
}

// Apply brings the reactor in line with cfg. Listeners that cannot be added
// because the reactor is full are reported in the returned error; everything
// else is still applied.
func (a *Applier) Apply(cfg *config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cfg.Display.Period != a.period {
		slog.Info("Applying refresh period", "from", a.period, "to", cfg.Display.Period)
		a.target.SetPeriod(cfg.Display.Period)
		if a.source != nil {
			a.source.SetPeriod(cfg.Display.Period)
		}
		a.period = cfg.Display.Period
	}

	if cfg.Reactor.IgnorePresentFences != a.ignore {
		slog.Info("Applying present fence setting", "ignore", cfg.Reactor.IgnorePresentFences)
		a.target.SetIgnorePresentFences(cfg.Reactor.IgnorePresentFences)
		a.ignore = cfg.Reactor.IgnorePresentFences
	}

	return a.applyListenersLocked(cfg)
}

func (a *Applier) applyListenersLocked(cfg *config.Config) error {
	for _, name := range slices.Sorted(maps.Keys(a.running)) {
		if _, ok := cfg.Listener(name); ok {
			continue
		}
		slog.Info("Removing listener", "listener", name)
		a.target.RemoveEventListener(reactor.ListenerID(name))
		delete(a.running, name)
	}

	var errs []error
	for _, l := range cfg.Listeners {
		phase, ok := a.running[l.Name]
		switch {
		case ok && phase == l.PhaseOffset:
		case ok:
			slog.Info("Changing listener phase", "listener", l.Name, "from", phase, "to", l.PhaseOffset)
			a.target.ChangePhaseOffset(reactor.ListenerID(l.Name), l.PhaseOffset)
			a.running[l.Name] = l.PhaseOffset
		default:
			err := a.target.AddEventListener(reactor.ListenerID(l.Name), l.PhaseOffset, a.newListener(l.Name))
			if err != nil {
				errs = append(errs, fmt.Errorf("listener %s: %w", l.Name, err))
				continue
			}
			slog.Info("Listener registered", "listener", l.Name, "phase", l.PhaseOffset)
			a.running[l.Name] = l.PhaseOffset
			a.slots[l.Name] = struct{}{}
		}
	}
	return errors.Join(errs...)
}

// Validate is a config.ConfigValidator. It rejects a configuration whose
// listeners would need more reactor slots than remain, counting the slots
// still held by removed listeners.
func (a *Applier) Validate(cfg *config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var added []string
	for _, l := range cfg.Listeners {
		if _, ok := a.slots[l.Name]; !ok {
			added = append(added, l.Name)
		}
	}
	if len(a.slots)+len(added) <= reactor.MaxListeners {
		return nil
	}
	return fmt.Errorf("listeners %v need a new slot but %v hold %d of %d: %w",
		added, slices.Sorted(maps.Keys(a.slots)), len(a.slots), reactor.MaxListeners, reactor.ErrResourceExhausted)
}

// OnConfigChange is a config.Subscriber
func (a *Applier) OnConfigChange(_, current *config.Config) {
	if err := a.Apply(current); err != nil {
		slog.Error("Configuration partially applied", "error", err)
	}
}

// Running returns the listeners the applier started, with their phases
func (a *Applier) Running() map[string]time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.running)
}

func logListener(name string) repeater.Listener {
	return repeater.ListenerFunc(func(wakeup clock.Time) {
		slog.Debug("Vsync event", "listener", name, "wakeup", wakeup)
	})
}
