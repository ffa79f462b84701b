package replay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleTrace = `
display: {period: 16.666666ms, pendingFenceLimit: 4}
listeners: [{name: app, phaseOffset: 1ms}]
events:
  - {at: 0s, resync: true}
  - {at: 16.6ms, fence: f1}
  - {at: 20ms, signal: {fence: f1, time: 16.6ms}}
  - {at: 30ms, setPeriod: 11.111111ms}
  - {at: 40ms, phaseOffset: {listener: app, offset: 2ms}}
  - {at: 50ms, removeListener: app}
  - {at: 60ms, ignoreFences: true}
until: 200ms
`

func TestParse(t *testing.T) {
	t.Parallel()

	trace, err := Parse([]byte(exampleTrace))
	require.NoError(t, err)

	assert.Equal(t, Display{Period: 16666666 * time.Nanosecond, PendingFenceLimit: 4}, trace.Display)
	assert.Equal(t, []Listener{{Name: "app", PhaseOffset: time.Millisecond}}, trace.Listeners)
	assert.Equal(t, 200*time.Millisecond, trace.Until)
	require.Len(t, trace.Events, 7)

	var kinds []string
	for _, ev := range trace.Events {
		kinds = append(kinds, ev.Kinds()...)
	}
	assert.Equal(t, []string{
		KindResync, KindFence, KindSignal, KindSetPeriod, KindPhaseOffset, KindRemoveListener, KindIgnoreFences,
	}, kinds)

	assert.Equal(t, &Signal{Fence: "f1", Time: 16600 * time.Microsecond}, trace.Events[2].Signal)
	assert.Equal(t, &PhaseChange{Listener: "app", Offset: 2 * time.Millisecond}, trace.Events[4].PhaseOffset)
	require.NotNil(t, trace.Events[6].IgnoreFences)
	assert.True(t, *trace.Events[6].IgnoreFences)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: "trace is empty",
		},
		{
			name:    "malformed yaml",
			input:   "display: [",
			wantErr: "failed to parse YAML trace",
		},
		{
			name:    "unknown field",
			input:   "display: {period: 10ms, pendingFenceLimit: 1, refresh: 60}",
			wantErr: "failed to parse YAML trace",
		},
		{
			name:    "missing period",
			input:   "display: {pendingFenceLimit: 1}",
			wantErr: "display.period must be positive",
		},
		{
			name:    "zero fence limit",
			input:   "display: {period: 10ms}",
			wantErr: "display.pendingFenceLimit must be at least 1",
		},
		{
			name: "duplicate listener",
			input: `
display: {period: 10ms, pendingFenceLimit: 1}
listeners: [{name: app}, {name: app}]`,
			wantErr: "listeners[1]: duplicate listener name 'app'",
		},
		{
			name: "event without action",
			input: `
display: {period: 10ms, pendingFenceLimit: 1}
events: [{at: 1ms}]`,
			wantErr: "events[0]: exactly one action is required, found 0",
		},
		{
			name: "event with two actions",
			input: `
display: {period: 10ms, pendingFenceLimit: 1}
events: [{at: 1ms, resync: true, fence: f1}]`,
			wantErr: "events[0]: exactly one action is required, found 2",
		},
		{
			name: "events out of order",
			input: `
display: {period: 10ms, pendingFenceLimit: 1}
events: [{at: 5ms, resync: true}, {at: 4ms, resync: true}]`,
			wantErr: "events[1]: at (4ms) is before the previous event (5ms)",
		},
		{
			name: "signal without fence",
			input: `
display: {period: 10ms, pendingFenceLimit: 1}
events: [{at: 1ms, signal: {time: 1ms}}]`,
			wantErr: "events[0]: signal.fence is required",
		},
		{
			name: "negative period",
			input: `
display: {period: 10ms, pendingFenceLimit: 1}
events: [{at: 1ms, setPeriod: -1ms}]`,
			wantErr: "events[0]: setPeriod must be positive",
		},
		{
			name: "until before last event",
			input: `
display: {period: 10ms, pendingFenceLimit: 1}
events: [{at: 5ms, resync: true}]
until: 1ms`,
			wantErr: "until (1ms) is before the last event (5ms)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "trace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleTrace), 0o600))

	trace, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, trace.Events, 7)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read trace file")
}
