// Package clock provides the monotonic time source used by the vsync reactor.
//
// Timestamps are expressed as Time, a count of nanoseconds on a monotonic
// timeline. Production code injects System(); tests inject Fake() and move
// time forward explicitly with Advance.
package clock

import (
	"fmt"
	"time"
)

// Time is an absolute point on the monotonic timeline, in nanoseconds.
type Time int64

// Add returns t + d.
func (t Time) Add(d time.Duration) Time {
	return t + Time(d)
}

// Sub returns the duration t - u.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(t - u)
}

// Before reports whether t is strictly before u.
func (t Time) Before(u Time) bool {
	return t < u
}

// After reports whether t is strictly after u.
func (t Time) After(u Time) bool {
	return t > u
}

// Nanoseconds returns t as an integer nanosecond count.
func (t Time) Nanoseconds() int64 {
	return int64(t)
}

func (t Time) String() string {
	return fmt.Sprintf("%dns", int64(t))
}

// Max returns the later of a and b.
func Max(a, b Time) Time {
	if a > b {
		return a
	}
	return b
}

// Clock supplies the current monotonic time.
type Clock interface {
	// Now returns the current monotonic time.
	Now() Time
}

// TimerClock is a Clock that can also run a function after a delay.
// The dispatcher uses it to arm one-shot wakeups.
type TimerClock interface {
	Clock

	// AfterFunc waits for duration d, then calls f in its own goroutine
	// (system clock) or synchronously during Advance (fake clock).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending call created by AfterFunc.
type Timer interface {
	// Stop prevents the Timer from firing. It returns false if the timer
	// has already fired or been stopped.
	Stop() bool
}
