package reactor

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/repeater"
)

// Snapshot is a point-in-time view of the reactor state.
type Snapshot struct {
	Period              time.Duration    `json:"period"`
	TransitioningTo     *time.Duration   `json:"transitioningTo,omitempty"`
	LastHwVsync         *clock.Time      `json:"lastHwVsync,omitempty"`
	MoreSamplesNeeded   bool             `json:"moreSamplesNeeded"`
	IgnorePresentFences bool             `json:"ignorePresentFences"`
	PendingFences       int              `json:"pendingFences"`
	PendingFenceLimit   int              `json:"pendingFenceLimit"`
	Listeners           []repeater.State `json:"listeners"`
}

// Snapshot returns the current reactor state. Listeners are sorted by id.
func (r *Reactor) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Period:              r.tracker.CurrentPeriod(),
		MoreSamplesNeeded:   r.moreSamplesNeeded,
		IgnorePresentFences: r.ignorePresentFences,
		PendingFences:       r.unfiredFences.Length(),
		PendingFenceLimit:   r.pendingFenceLimit,
		Listeners:           make([]repeater.State, 0, len(r.listeners)),
	}
	if r.transitioning {
		target := r.periodTransitioningTo
		snap.TransitioningTo = &target
	}
	if r.hasLastHwVsync {
		last := r.lastHwVsync
		snap.LastHwVsync = &last
	}
	for _, id := range slices.Sorted(maps.Keys(r.listeners)) {
		snap.Listeners = append(snap.Listeners, r.listeners[id].State())
	}
	return snap
}

// Dump returns a human readable description of the reactor state.
func (r *Reactor) Dump() string {
	snap := r.Snapshot()

	var b strings.Builder
	b.WriteString("VsyncReactor in use\n")
	fmt.Fprintf(&b, "  period: %v\n", snap.Period)
	if snap.TransitioningTo != nil {
		fmt.Fprintf(&b, "  transitioning to: %v", *snap.TransitioningTo)
		if snap.LastHwVsync != nil {
			fmt.Fprintf(&b, " (last hw vsync %v)", *snap.LastHwVsync)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("  transitioning to: none\n")
	}
	fmt.Fprintf(&b, "  more samples needed: %t\n", snap.MoreSamplesNeeded)
	fmt.Fprintf(&b, "  ignore present fences: %t\n", snap.IgnorePresentFences)
	fmt.Fprintf(&b, "  pending fences: %d/%d\n", snap.PendingFences, snap.PendingFenceLimit)
	fmt.Fprintf(&b, "  listeners: %d/%d\n", len(snap.Listeners), MaxListeners)
	for _, l := range snap.Listeners {
		fmt.Fprintf(&b, "    %s: phase=%v period=%v last=%v running=%t\n",
			l.Name, l.Phase, l.Period, l.LastCallTime, l.Running)
	}
	return b.String()
}
