package tracker

import (
	"sync"
	"time"

	"github.com/stacklok/vsync-reactor/internal/clock"
)

// Fixed is a Tracker whose period only changes through SetPeriod. Accepted
// vsync timestamps re-anchor the timeline so anticipated vsyncs stay in phase
// with the most recent observation.
//
// Fixed performs no filtering or regression; it is the model used by the
// software vsync generator and by trace replay, where timestamps are exact.
type Fixed struct {
	mu       sync.Mutex
	period   time.Duration
	anchor   clock.Time
	accepted uint64
	rejected uint64
}

// NewFixed returns a Fixed tracker with the given period, anchored at time 0.
func NewFixed(period time.Duration) *Fixed {
	return &Fixed{period: period}
}

// AddVsyncTimestamp re-anchors the timeline at ts. Timestamps older than the
// current anchor are counted and ignored.
func (f *Fixed) AddVsyncTimestamp(ts clock.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.accepted > 0 && ts.Before(f.anchor) {
		f.rejected++
		return
	}
	f.anchor = ts
	f.accepted++
}

// CurrentPeriod returns the configured period.
func (f *Fixed) CurrentPeriod() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.period
}

// SetPeriod replaces the period. Non-positive periods are ignored.
func (f *Fixed) SetPeriod(period time.Duration) {
	if period <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.period = period
}

// NextAnticipatedVSyncTimeFrom returns the first anchor + k*period at or
// after ts, for any integer k.
func (f *Fixed) NextAnticipatedVSyncTimeFrom(ts clock.Time) clock.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	period := int64(f.period)
	if period <= 0 {
		return ts
	}

	diff := int64(ts - f.anchor)
	var k int64
	if diff > 0 {
		k = (diff + period - 1) / period
	} else {
		// truncation toward zero is the ceiling for non-positive values
		k = diff / period
	}
	return f.anchor + clock.Time(k*period)
}

// Stats returns the number of accepted and rejected timestamps.
func (f *Fixed) Stats() (accepted, rejected uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted, f.rejected
}

// Anchor returns the most recent accepted timestamp.
func (f *Fixed) Anchor() clock.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.anchor
}
