package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
)

// ErrDisplayLocked is returned when another daemon holds the display lock
var ErrDisplayLocked = errors.New("display is driven by another process")

// displayLock is an exclusive advisory lock on the configured lock file
type displayLock struct {
	lock *flock.Flock
}

// acquireDisplayLock takes the lock without waiting. An empty path disables locking.
func acquireDisplayLock(path string) (*displayLock, error) {
	if path == "" {
		return &displayLock{}, nil
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s is locked", ErrDisplayLocked, path)
	}

	slog.Info("Display lock acquired", "path", path)
	return &displayLock{lock: lock}, nil
}

// Release drops the lock. It is safe to call more than once.
func (l *displayLock) Release() error {
	if l == nil || l.lock == nil || !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to release display lock %s: %w", l.lock.Path(), err)
	}
	slog.Info("Display lock released", "path", l.lock.Path())
	return nil
}
