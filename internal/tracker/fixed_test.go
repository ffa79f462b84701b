package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/vsync-reactor/internal/clock"
)

var _ Tracker = (*Fixed)(nil)

func TestFixed_NextAnticipatedVSyncTimeFrom(t *testing.T) {
	t.Parallel()

	const period = 10 * time.Millisecond
	anchor := clock.Time(0).Add(5 * time.Millisecond)

	tests := []struct {
		name string
		from clock.Time
		want clock.Time
	}{
		{name: "exactly on the anchor", from: anchor, want: anchor},
		{name: "just after the anchor", from: anchor + 1, want: anchor.Add(period)},
		{name: "exactly one period later", from: anchor.Add(period), want: anchor.Add(period)},
		{name: "several periods later", from: anchor.Add(35 * time.Millisecond), want: anchor.Add(40 * time.Millisecond)},
		{name: "before the anchor", from: anchor.Add(-3 * time.Millisecond), want: anchor},
		{name: "more than a period before the anchor", from: anchor.Add(-13 * time.Millisecond), want: anchor.Add(-period)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := NewFixed(period)
			tr.AddVsyncTimestamp(anchor)
			assert.Equal(t, tt.want, tr.NextAnticipatedVSyncTimeFrom(tt.from))
		})
	}
}

func TestFixed_AddVsyncTimestamp(t *testing.T) {
	t.Parallel()

	tr := NewFixed(16 * time.Millisecond)
	tr.AddVsyncTimestamp(100)
	tr.AddVsyncTimestamp(200)
	tr.AddVsyncTimestamp(150)

	accepted, rejected := tr.Stats()
	assert.Equal(t, uint64(2), accepted)
	assert.Equal(t, uint64(1), rejected)
	assert.Equal(t, clock.Time(200), tr.Anchor())
}

func TestFixed_SetPeriod(t *testing.T) {
	t.Parallel()

	tr := NewFixed(16 * time.Millisecond)
	tr.SetPeriod(11 * time.Millisecond)
	assert.Equal(t, 11*time.Millisecond, tr.CurrentPeriod())

	tr.SetPeriod(0)
	tr.SetPeriod(-time.Millisecond)
	assert.Equal(t, 11*time.Millisecond, tr.CurrentPeriod())
}

func TestFixed_ZeroPeriod(t *testing.T) {
	t.Parallel()

	tr := NewFixed(0)
	assert.Equal(t, clock.Time(123), tr.NextAnticipatedVSyncTimeFrom(123))
}
