// Package dispatch provides the one-shot vsync scheduling primitive: a
// registration is armed for a single future vsync and fires once.
package dispatch

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/vsync-reactor/internal/clock"
)

//go:generate mockgen -destination=mocks/mock_dispatch.go -package=mocks -source=dispatch.go Dispatcher,Registration

var (
	// ErrRegistrationClosed is returned when scheduling on a released registration.
	ErrRegistrationClosed = errors.New("registration closed")

	// ErrNilCallback is returned when registering without a callback.
	ErrNilCallback = errors.New("callback is required")
)

// Callback is invoked once per armed schedule with the vsync the callback
// was scheduled against and the time it was scheduled to wake up.
type Callback func(vsync, wakeup clock.Time)

// Dispatcher creates named registrations bound to a callback.
type Dispatcher interface {
	// Register binds cb to a new registration. The caller owns the returned
	// Registration and must Close it.
	Register(name string, cb Callback) (Registration, error)
}

// Registration is a scoped handle for one callback. At most one firing is
// armed at a time; scheduling again replaces the armed firing.
type Registration interface {
	// ID uniquely identifies the registration within its dispatcher.
	ID() uuid.UUID

	// Name returns the name given at registration.
	Name() string

	// Schedule arms the callback for the first anticipated vsync at or after
	// max(earliestVsync, now+workload), waking up workload before that vsync.
	Schedule(workload time.Duration, earliestVsync clock.Time) error

	// Cancel disarms a pending firing. It does not interrupt a firing that
	// has already started.
	Cancel()

	// Close cancels and releases the registration. Close is idempotent.
	Close() error
}
