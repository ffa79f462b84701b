// Package service provides the display timing operations served by the API
package service

import (
	"context"
	"errors"
	"time"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/repeater"
)

var (
	// ErrInvalidPeriod is returned when a requested refresh period is not positive
	ErrInvalidPeriod = errors.New("invalid refresh period")
	// ErrInvalidPeriodOffset is returned when a timing query reaches too far ahead
	ErrInvalidPeriodOffset = errors.New("invalid period offset")
	// ErrNotReady is returned by CheckReadiness while vsync samples are not flowing
	ErrNotReady = errors.New("display not ready")
)

// MaxPeriodOffset bounds the number of periods a timing query may look ahead.
const MaxPeriodOffset = 1000

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go DisplayService

// DisplayService defines the display timing operations
type DisplayService interface {
	// CheckReadiness checks if the display is ready to serve timing requests
	CheckReadiness(ctx context.Context) error

	// Timing returns the next refresh periodOffset periods ahead
	Timing(ctx context.Context, periodOffset int) (*Timing, error)

	// SetPeriod requests a refresh period change
	SetPeriod(ctx context.Context, period time.Duration) error

	// SetIgnorePresentFences switches present fence refinement off or back on
	SetIgnorePresentFences(ctx context.Context, ignore bool) error

	// Listeners returns the registered listeners sorted by name
	Listeners(ctx context.Context) ([]repeater.State, error)

	// State returns the reactor state
	State(ctx context.Context) (*reactor.Snapshot, error)

	// Dump returns the reactor state as text
	Dump(ctx context.Context) (string, error)
}

// Timing is the answer to a timing query
type Timing struct {
	DisplayName         string        `json:"displayName"`
	Period              time.Duration `json:"period"`
	PeriodOffset        int           `json:"periodOffset"`
	Now                 clock.Time    `json:"now"`
	NextRefresh         clock.Time    `json:"nextRefresh"`
	ExpectedPresentTime clock.Time    `json:"expectedPresentTime"`
}
