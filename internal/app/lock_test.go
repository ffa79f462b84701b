package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireDisplayLock(t *testing.T) {
	t.Parallel()

	t.Run("empty path disables locking", func(t *testing.T) {
		t.Parallel()

		lock, err := acquireDisplayLock("")
		require.NoError(t, err)
		require.NoError(t, lock.Release())
	})

	t.Run("second holder is rejected until release", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "display.lock")
		first, err := acquireDisplayLock(path)
		require.NoError(t, err)

		_, err = acquireDisplayLock(path)
		require.ErrorIs(t, err, ErrDisplayLocked)

		require.NoError(t, first.Release())
		require.NoError(t, first.Release())

		second, err := acquireDisplayLock(path)
		require.NoError(t, err)
		assert.NoError(t, second.Release())
	})

	t.Run("unwritable location", func(t *testing.T) {
		t.Parallel()

		_, err := acquireDisplayLock(filepath.Join(t.TempDir(), "missing", "display.lock"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDisplayLocked)
	})
}
