package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFail(t *testing.T) {
	t.Parallel()

	assert.PanicsWithError(t, "repeater.stop: listener app already stopped", func() {
		Fail("repeater.stop", "listener %s already stopped", "app")
	})
}

func TestFailPanicsWithViolation(t *testing.T) {
	t.Parallel()

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)
		v, ok := recovered.(*Violation)
		require.True(t, ok, "expected *Violation, got %T", recovered)
		assert.Equal(t, "reactor.remove", v.Op)
		assert.Equal(t, "listener ui not registered", v.Message)
	}()

	Fail("reactor.remove", "listener %s not registered", "ui")
}

func TestFailf(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { Failf(false, "op", "never") })
	assert.Panics(t, func() { Failf(true, "op", "always") })
}
