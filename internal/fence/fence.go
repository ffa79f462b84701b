// Package fence models presentation fences: asynchronous completion signals
// whose settle time is used to refine the vsync model.
package fence

import (
	"math"
	"sync"

	"github.com/stacklok/vsync-reactor/internal/clock"
)

const (
	// SignalTimePending is reported while a fence has not signalled yet.
	SignalTimePending = clock.Time(math.MaxInt64)

	// SignalTimeInvalid is reported for a fence that will never produce a
	// usable signal time.
	SignalTimeInvalid = clock.Time(-1)
)

// IsPending reports whether a signal time is the pending sentinel.
func IsPending(t clock.Time) bool {
	return t == SignalTimePending
}

// IsInvalid reports whether a signal time is the invalid sentinel.
func IsInvalid(t clock.Time) bool {
	return t == SignalTimeInvalid
}

// IsSettled reports whether a signal time is a concrete timestamp.
func IsSettled(t clock.Time) bool {
	return !IsPending(t) && !IsInvalid(t)
}

// Fence is a queryable completion signal.
//
// SignalTime returns SignalTimePending, SignalTimeInvalid or the concrete
// time at which the fence signalled. Implementations cache the answer: once
// a fence reports something other than pending, it keeps reporting it.
type Fence interface {
	SignalTime() clock.Time
}

// Time is a settable Fence. The zero value is not usable; construct one with
// NewPending, NewSignaled or NewInvalid.
//
// Time is safe for concurrent use: the compositor signals it from one
// goroutine while the reactor polls it from another.
type Time struct {
	mu     sync.Mutex
	signal clock.Time
}

// NewPending returns a fence that has not signalled yet.
func NewPending() *Time {
	return &Time{signal: SignalTimePending}
}

// NewSignaled returns a fence that already signalled at t.
func NewSignaled(t clock.Time) *Time {
	return &Time{signal: t}
}

// NewInvalid returns a fence that will never signal.
func NewInvalid() *Time {
	return &Time{signal: SignalTimeInvalid}
}

// SignalTime returns the cached signal state of the fence.
func (f *Time) SignalTime() clock.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signal
}

// Signal settles a pending fence at t. It reports false and changes nothing
// if the fence was already settled or invalidated, or if t is a sentinel.
func (f *Time) Signal(t clock.Time) bool {
	if !IsSettled(t) {
		return false
	}
	return f.settle(t)
}

// Invalidate marks a pending fence as never signalling. It reports false if
// the fence had already left the pending state.
func (f *Time) Invalidate() bool {
	return f.settle(SignalTimeInvalid)
}

func (f *Time) settle(t clock.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !IsPending(f.signal) {
		return false
	}
	f.signal = t
	return true
}
