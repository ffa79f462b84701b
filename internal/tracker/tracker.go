// Package tracker defines the vsync period model consumed by the reactor and
// provides a fixed-period implementation for the daemon and trace replay.
package tracker

import (
	"time"

	"github.com/stacklok/vsync-reactor/internal/clock"
)

//go:generate mockgen -destination=mocks/mock_tracker.go -package=mocks -source=tracker.go Tracker

// Tracker models the display's vsync timeline.
type Tracker interface {
	// AddVsyncTimestamp feeds an observed vsync time into the model.
	AddVsyncTimestamp(ts clock.Time)

	// CurrentPeriod returns the current period estimate.
	CurrentPeriod() time.Duration

	// SetPeriod replaces the period estimate.
	SetPeriod(period time.Duration)

	// NextAnticipatedVSyncTimeFrom returns the first anticipated vsync at or
	// after the given time.
	NextAnticipatedVSyncTimeFrom(ts clock.Time) clock.Time
}
