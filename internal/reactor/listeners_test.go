package reactor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/dispatch"
	dispatchmocks "github.com/stacklok/vsync-reactor/internal/dispatch/mocks"
	"github.com/stacklok/vsync-reactor/internal/repeater"
	"github.com/stacklok/vsync-reactor/internal/tracker"
)

const testPeriod = 10 * time.Millisecond

type listenerEnv struct {
	clock      *clock.FakeClock
	tracker    *tracker.Fixed
	dispatcher *dispatch.TimerDispatcher
	reactor    *Reactor
}

func newListenerEnv(t *testing.T) *listenerEnv {
	t.Helper()
	clk := clock.Fake(0)
	tr := tracker.NewFixed(testPeriod)
	td := dispatch.NewTimerDispatcher(clk, tr)
	r := New(clk, td, tr, 4)
	t.Cleanup(func() { _ = r.Close() })
	return &listenerEnv{clock: clk, tracker: tr, dispatcher: td, reactor: r}
}

func listenerState(t *testing.T, snap Snapshot, name string) repeater.State {
	t.Helper()
	for _, state := range snap.Listeners {
		if state.Name == name {
			return state
		}
	}
	t.Fatalf("listener %s not in snapshot", name)
	return repeater.State{}
}

// recorder collects the wakeup times it is called with.
type recorder struct {
	wakeups []clock.Time
}

func (rec *recorder) OnVsyncEvent(wakeup clock.Time) {
	rec.wakeups = append(rec.wakeups, wakeup)
}

func TestAddEventListener(t *testing.T) {
	t.Parallel()

	t.Run("fires phase after every vsync", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		rec := &recorder{}
		require.NoError(t, env.reactor.AddEventListener("app", 3*time.Millisecond, rec))

		env.clock.Advance(35 * time.Millisecond)
		assert.Equal(t, []clock.Time{ms(3), ms(13), ms(23), ms(33)}, rec.wakeups)
	})

	t.Run("seeds the repeater with the current period and time", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		env.clock.Advance(7 * time.Millisecond)
		require.NoError(t, env.reactor.AddEventListener("app", time.Millisecond, &recorder{}))

		snap := env.reactor.Snapshot()
		require.Len(t, snap.Listeners, 1)
		assert.Equal(t, repeater.State{
			Name:         "app",
			Period:       testPeriod,
			Phase:        time.Millisecond,
			LastCallTime: ms(7),
			Running:      true,
		}, snap.Listeners[0])
	})

	t.Run("fourth listener is rejected and others are untouched", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		recs := map[ListenerID]*recorder{"a": {}, "b": {}, "c": {}}
		for id, rec := range recs {
			require.NoError(t, env.reactor.AddEventListener(id, 0, rec))
		}
		before := env.reactor.Snapshot().Listeners

		err := env.reactor.AddEventListener("d", 0, &recorder{})
		require.ErrorIs(t, err, ErrResourceExhausted)
		assert.False(t, env.reactor.HasListener("d"))
		assert.Equal(t, before, env.reactor.Snapshot().Listeners)
		assert.Equal(t, MaxListeners, env.dispatcher.Registrations())

		env.clock.Advance(25 * time.Millisecond)
		for id, rec := range recs {
			assert.Equal(t, []clock.Time{ms(0), ms(10), ms(20)}, rec.wakeups, "listener %s", id)
		}
	})

	t.Run("re-adding a known id restarts it at the new phase", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		rec := &recorder{}
		for _, id := range []ListenerID{"a", "b", "app"} {
			require.NoError(t, env.reactor.AddEventListener(id, 0, &recorder{}))
		}
		env.reactor.RemoveEventListener("app")
		require.NoError(t, env.reactor.AddEventListener("app", 4*time.Millisecond, rec))

		snap := env.reactor.Snapshot()
		require.Len(t, snap.Listeners, MaxListeners)
		state := listenerState(t, snap, "app")
		assert.Equal(t, 4*time.Millisecond, state.Phase)
		assert.True(t, state.Running)
		assert.Equal(t, MaxListeners, env.dispatcher.Registrations())
	})

	t.Run("registration failure is returned", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		d := dispatchmocks.NewMockDispatcher(ctrl)
		registerErr := errors.New("dispatcher closed")
		d.EXPECT().Register("app", gomock.Any()).Return(nil, registerErr)

		r := New(clock.Fake(0), d, tracker.NewFixed(testPeriod), 1)
		err := r.AddEventListener("app", 0, &recorder{})
		require.ErrorIs(t, err, registerErr)
		assert.False(t, r.HasListener("app"))
	})
}

func TestAddEventListener_FirstScheduleWorkload(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	d := dispatchmocks.NewMockDispatcher(ctrl)
	reg := dispatchmocks.NewMockRegistration(ctrl)
	d.EXPECT().Register("app", gomock.Any()).Return(reg, nil)
	reg.EXPECT().Schedule(12*time.Millisecond, ms(5)).Return(nil)

	r := New(clock.Fake(ms(5)), d, tracker.NewFixed(16*time.Millisecond), 1)
	require.NoError(t, r.AddEventListener("app", 4*time.Millisecond, &recorder{}))
}

func TestRemoveEventListener(t *testing.T) {
	t.Parallel()

	t.Run("stops delivery", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		rec := &recorder{}
		require.NoError(t, env.reactor.AddEventListener("app", 0, rec))
		env.clock.Advance(5 * time.Millisecond)
		require.Len(t, rec.wakeups, 1)

		env.reactor.RemoveEventListener("app")
		env.clock.Advance(100 * time.Millisecond)
		assert.Len(t, rec.wakeups, 1)
		assert.True(t, env.reactor.HasListener("app"))
	})

	t.Run("removing twice is fatal", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		require.NoError(t, env.reactor.AddEventListener("app", 0, &recorder{}))
		env.reactor.RemoveEventListener("app")

		assert.PanicsWithError(t, "repeater.Stop: app already stopped", func() {
			env.reactor.RemoveEventListener("app")
		})
	})

	t.Run("removing an unknown listener is fatal", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		assert.PanicsWithError(t, "reactor.RemoveEventListener: listener ghost not registered", func() {
			env.reactor.RemoveEventListener("ghost")
		})
	})
}

func TestChangePhaseOffset(t *testing.T) {
	t.Parallel()

	t.Run("moves the firing within the period", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		rec := &recorder{}
		require.NoError(t, env.reactor.AddEventListener("app", 2*time.Millisecond, rec))
		env.clock.Advance(5 * time.Millisecond)

		env.reactor.ChangePhaseOffset("app", 6*time.Millisecond)
		env.clock.Advance(20 * time.Millisecond)

		assert.Equal(t, []clock.Time{ms(2), ms(16)}, rec.wakeups)
		assert.Equal(t, 6*time.Millisecond, env.reactor.Snapshot().Listeners[0].Phase)
	})

	t.Run("changing an unknown listener is fatal", func(t *testing.T) {
		t.Parallel()

		env := newListenerEnv(t)
		assert.PanicsWithError(t, "reactor.ChangePhaseOffset: listener ghost not registered", func() {
			env.reactor.ChangePhaseOffset("ghost", 0)
		})
	})
}

func TestPeriodCommitPropagatesToListeners(t *testing.T) {
	t.Parallel()

	env := newListenerEnv(t)
	rec := &recorder{}
	require.NoError(t, env.reactor.AddEventListener("app", 0, rec))

	env.reactor.SetPeriod(testPeriod)
	assert.Equal(t, testPeriod, env.reactor.Snapshot().Listeners[0].Period)

	env.reactor.SetPeriod(5 * time.Millisecond)
	assert.Equal(t, testPeriod, env.reactor.Snapshot().Listeners[0].Period)

	env.reactor.AddResyncSample(ms(0))
	_, flushed := env.reactor.AddResyncSample(ms(5))
	require.True(t, flushed)

	assert.Equal(t, 5*time.Millisecond, env.tracker.CurrentPeriod())
	assert.Equal(t, 5*time.Millisecond, env.reactor.Snapshot().Listeners[0].Period)
}

func TestClose(t *testing.T) {
	t.Parallel()

	env := newListenerEnv(t)
	rec := &recorder{}
	require.NoError(t, env.reactor.AddEventListener("a", 0, rec))
	require.NoError(t, env.reactor.AddEventListener("b", 0, &recorder{}))
	require.Equal(t, 2, env.dispatcher.Registrations())

	require.NoError(t, env.reactor.Close())
	assert.Equal(t, 0, env.dispatcher.Registrations())
	assert.False(t, env.reactor.HasListener("a"))

	env.clock.Advance(100 * time.Millisecond)
	assert.Empty(t, rec.wakeups)
}

func TestDump(t *testing.T) {
	t.Parallel()

	env := newListenerEnv(t)
	require.NoError(t, env.reactor.AddEventListener("app", 2*time.Millisecond, &recorder{}))
	env.reactor.SetPeriod(5 * time.Millisecond)
	env.reactor.AddResyncSample(ms(1))

	dump := env.reactor.Dump()
	assert.Contains(t, dump, "VsyncReactor in use")
	assert.Contains(t, dump, "period: 10ms")
	assert.Contains(t, dump, "transitioning to: 5ms (last hw vsync 1000000ns)")
	assert.Contains(t, dump, "pending fences: 0/4")
	assert.Contains(t, dump, "listeners: 1/3")
	assert.Contains(t, dump, "app: phase=2ms period=10ms")
}
