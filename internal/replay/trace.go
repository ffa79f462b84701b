// Package replay runs recorded vsync traces against a Reactor on a fake
// clock and reports every listener firing.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Event kinds
const (
	KindResync         = "resync"
	KindFence          = "fence"
	KindSignal         = "signal"
	KindInvalidate     = "invalidate"
	KindSetPeriod      = "setPeriod"
	KindPhaseOffset    = "phaseOffset"
	KindAddListener    = "addListener"
	KindRemoveListener = "removeListener"
	KindIgnoreFences   = "ignoreFences"
)

// Trace is a recorded sequence of reactor inputs
type Trace struct {
	Display   Display    `yaml:"display"`
	Listeners []Listener `yaml:"listeners,omitempty"`
	Events    []Event    `yaml:"events"`
	// Until is the time the replay runs to after the last event.
	Until time.Duration `yaml:"until,omitempty"`
}

// Display describes the simulated display
type Display struct {
	Period            time.Duration `yaml:"period"`
	PendingFenceLimit int           `yaml:"pendingFenceLimit"`
	MinVsyncDistance  time.Duration `yaml:"minVsyncDistance,omitempty"`
}

// Listener is a listener registered at a phase offset
type Listener struct {
	Name        string        `yaml:"name"`
	PhaseOffset time.Duration `yaml:"phaseOffset"`
}

// Signal settles a named fence at a time
type Signal struct {
	Fence string        `yaml:"fence"`
	Time  time.Duration `yaml:"time"`
}

// PhaseChange moves a registered listener to a new phase offset
type PhaseChange struct {
	Listener string        `yaml:"listener"`
	Offset   time.Duration `yaml:"offset"`
}

// Event is one input applied at time At. Exactly one action is set.
type Event struct {
	At             time.Duration `yaml:"at"`
	Resync         bool          `yaml:"resync,omitempty"`
	Fence          string        `yaml:"fence,omitempty"`
	Signal         *Signal       `yaml:"signal,omitempty"`
	Invalidate     string        `yaml:"invalidate,omitempty"`
	SetPeriod      time.Duration `yaml:"setPeriod,omitempty"`
	PhaseOffset    *PhaseChange  `yaml:"phaseOffset,omitempty"`
	AddListener    *Listener     `yaml:"addListener,omitempty"`
	RemoveListener string        `yaml:"removeListener,omitempty"`
	IgnoreFences   *bool         `yaml:"ignoreFences,omitempty"`
}

// Kinds returns the actions set on the event
func (e *Event) Kinds() []string {
	var kinds []string
	if e.Resync {
		kinds = append(kinds, KindResync)
	}
	if e.Fence != "" {
		kinds = append(kinds, KindFence)
	}
	if e.Signal != nil {
		kinds = append(kinds, KindSignal)
	}
	if e.Invalidate != "" {
		kinds = append(kinds, KindInvalidate)
	}
	if e.SetPeriod != 0 {
		kinds = append(kinds, KindSetPeriod)
	}
	if e.PhaseOffset != nil {
		kinds = append(kinds, KindPhaseOffset)
	}
	if e.AddListener != nil {
		kinds = append(kinds, KindAddListener)
	}
	if e.RemoveListener != "" {
		kinds = append(kinds, KindRemoveListener)
	}
	if e.IgnoreFences != nil {
		kinds = append(kinds, KindIgnoreFences)
	}
	return kinds
}

// Load reads and validates a trace file
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML trace. Unknown fields are rejected.
func Parse(data []byte) (*Trace, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var trace Trace
	if err := dec.Decode(&trace); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("trace is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML trace: %w", err)
	}

	if err := trace.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trace: %w", err)
	}
	return &trace, nil
}

// Validate checks the trace for errors a replay cannot recover from
func (t *Trace) Validate() error {
	if t == nil {
		return fmt.Errorf("trace cannot be nil")
	}
	if t.Display.Period <= 0 {
		return fmt.Errorf("display.period must be positive")
	}
	if t.Display.PendingFenceLimit < 1 {
		return fmt.Errorf("display.pendingFenceLimit must be at least 1")
	}
	if t.Display.MinVsyncDistance < 0 {
		return fmt.Errorf("display.minVsyncDistance cannot be negative")
	}

	names := make(map[string]bool)
	for i, l := range t.Listeners {
		if l.Name == "" {
			return fmt.Errorf("listeners[%d]: name is required", i)
		}
		if names[l.Name] {
			return fmt.Errorf("listeners[%d]: duplicate listener name '%s'", i, l.Name)
		}
		names[l.Name] = true
	}

	var last time.Duration
	for i := range t.Events {
		if err := t.Events[i].validate(i, last); err != nil {
			return err
		}
		last = t.Events[i].At
	}

	if t.Until != 0 && t.Until < last {
		return fmt.Errorf("until (%v) is before the last event (%v)", t.Until, last)
	}
	return nil
}

func (e *Event) validate(index int, previous time.Duration) error {
	prefix := fmt.Sprintf("events[%d]", index)

	if e.At < 0 {
		return fmt.Errorf("%s: at cannot be negative", prefix)
	}
	if e.At < previous {
		return fmt.Errorf("%s: at (%v) is before the previous event (%v)", prefix, e.At, previous)
	}

	kinds := e.Kinds()
	if len(kinds) != 1 {
		return fmt.Errorf("%s: exactly one action is required, found %d %v", prefix, len(kinds), kinds)
	}

	switch {
	case e.Signal != nil && e.Signal.Fence == "":
		return fmt.Errorf("%s: signal.fence is required", prefix)
	case e.Signal != nil && e.Signal.Time < 0:
		return fmt.Errorf("%s: signal.time cannot be negative", prefix)
	case e.SetPeriod < 0:
		return fmt.Errorf("%s: setPeriod must be positive", prefix)
	case e.PhaseOffset != nil && e.PhaseOffset.Listener == "":
		return fmt.Errorf("%s: phaseOffset.listener is required", prefix)
	case e.AddListener != nil && e.AddListener.Name == "":
		return fmt.Errorf("%s: addListener.name is required", prefix)
	}
	return nil
}
