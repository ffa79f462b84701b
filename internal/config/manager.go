package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fsnotify/fsnotify"
)

// DefaultRewatchTimeout bounds how long the watcher waits for a removed
// config file to reappear.
const DefaultRewatchTimeout = 30 * time.Second

// ErrAlreadyWatching is returned by WatchConfig while another watch is running
var ErrAlreadyWatching = errors.New("config watcher is already running")

// ConfigManager provides thread-safe, read-only configuration management.
// The file is never written by the daemon; updates come from editors,
// volume mounts or orchestration tools.
type ConfigManager interface {
	// GetConfig safely retrieves the current configuration
	GetConfig() *Config

	// ReloadConfig reads the latest configuration from disk and applies it if valid.
	// Returns error if the new config is invalid; the previous one stays active.
	ReloadConfig() error

	// Subscribe registers fn to run after every applied change
	Subscribe(fn Subscriber)

	// AddValidator registers v to run on every later reload. A rejected
	// reload leaves the current configuration in place.
	AddValidator(v ConfigValidator)

	// WatchConfig reloads the configuration when the file changes.
	// Blocks until context is cancelled.
	WatchConfig(ctx context.Context) error

	// Close releases the file watcher resources
	Close() error
}

// Subscriber is called with the previous and the newly applied configuration
type Subscriber func(previous, current *Config)

// ConfigValidator defines the interface for validating configurations
// beyond the built-in checks
type ConfigValidator interface {
	Validate(config *Config) error
}

// LoaderFunc reads a configuration from path
type LoaderFunc func(path string) (*Config, error)

type configManager struct {
	mu             sync.RWMutex
	config         *Config
	configPath     string
	loader         LoaderFunc
	validators     []ConfigValidator
	subscribers    []Subscriber
	rewatchTimeout time.Duration

	watcher   *fsnotify.Watcher
	watcherMu sync.Mutex
}

// ConfigManagerOption allows customizing ConfigManager behavior
type ConfigManagerOption func(*configManager)

// WithValidator adds a validator run after the built-in checks
func WithValidator(validator ConfigValidator) ConfigManagerOption {
	return func(cm *configManager) {
		cm.validators = append(cm.validators, validator)
	}
}

// WithLoader sets a custom config loader
func WithLoader(loader LoaderFunc) ConfigManagerOption {
	return func(cm *configManager) {
		cm.loader = loader
	}
}

// WithRewatchTimeout sets how long a removed file is waited for
func WithRewatchTimeout(d time.Duration) ConfigManagerOption {
	return func(cm *configManager) {
		cm.rewatchTimeout = d
	}
}

// NewConfigManager loads and validates the configuration at configPath.
func NewConfigManager(configPath string, opts ...ConfigManagerOption) (ConfigManager, error) {
	cm := &configManager{
		configPath: configPath,
		loader: func(path string) (*Config, error) {
			return LoadConfig(WithConfigPath(path))
		},
		rewatchTimeout: DefaultRewatchTimeout,
	}

	for _, opt := range opts {
		opt(cm)
	}

	if err := cm.ReloadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load initial configuration: %w", err)
	}

	return cm, nil
}

// GetConfig safely retrieves the current configuration
func (cm *configManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	configCopy := *cm.config
	configCopy.Listeners = append([]ListenerConfig(nil), cm.config.Listeners...)
	return &configCopy
}

// Subscribe implements ConfigManager.Subscribe
func (cm *configManager) Subscribe(fn Subscriber) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.subscribers = append(cm.subscribers, fn)
}

// AddValidator implements ConfigManager.AddValidator
func (cm *configManager) AddValidator(v ConfigValidator) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.validators = append(cm.validators, v)
}

// ReloadConfig reads the configuration file and applies it if valid.
// Subscribers run only when the configuration actually changed.
func (cm *configManager) ReloadConfig() error {
	newConfig, err := cm.loader(cm.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cm.mu.RLock()
	validators := append([]ConfigValidator(nil), cm.validators...)
	cm.mu.RUnlock()
	for _, v := range validators {
		if err := v.Validate(newConfig); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	cm.mu.Lock()
	previous := cm.config
	if previous != nil && reflect.DeepEqual(previous, newConfig) {
		cm.mu.Unlock()
		slog.Debug("Configuration unchanged", "path", cm.configPath)
		return nil
	}
	cm.config = newConfig
	subscribers := append([]Subscriber(nil), cm.subscribers...)
	cm.mu.Unlock()

	slog.Info("Configuration reloaded", "path", cm.configPath)
	if previous != nil {
		for _, fn := range subscribers {
			fn(previous, newConfig)
		}
	}
	return nil
}

// WatchConfig observes the configuration file for external changes. A
// removed or renamed file is watched again once it reappears, which covers
// editors that save by rename and symlink swaps on mounted volumes.
func (cm *configManager) WatchConfig(ctx context.Context) error {
	cm.watcherMu.Lock()
	if cm.watcher != nil {
		cm.watcherMu.Unlock()
		return ErrAlreadyWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cm.watcherMu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cm.watcher = watcher
	cm.watcherMu.Unlock()

	if err := watcher.Add(cm.configPath); err != nil {
		return fmt.Errorf("failed to watch config file %s: %w", cm.configPath, err)
	}

	slog.Info("Started watching configuration file", "path", cm.configPath)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping config file watcher due to context cancellation")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				slog.Info("Config update detected, reloading", "op", event.Op.String())
				if err := cm.ReloadConfig(); err != nil {
					slog.Error("Failed to reload config, keeping previous configuration", "error", err)
				}
			}

			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Debug("Config file replaced, re-watching", "op", event.Op.String())
				if err := cm.rewatch(ctx, watcher); err != nil {
					return fmt.Errorf("failed to re-watch config file %s: %w", cm.configPath, err)
				}
				if err := cm.ReloadConfig(); err != nil {
					slog.Error("Failed to reload config, keeping previous configuration", "error", err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

// rewatch adds the config path back to watcher, retrying with exponential
// backoff until the file exists again or the rewatch timeout passes.
func (cm *configManager) rewatch(ctx context.Context, watcher *fsnotify.Watcher) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, watcher.Add(cm.configPath)
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(cm.rewatchTimeout))
	return err
}

// Close releases resources held by the config manager
func (cm *configManager) Close() error {
	cm.watcherMu.Lock()
	defer cm.watcherMu.Unlock()

	if cm.watcher != nil {
		if err := cm.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close file watcher: %w", err)
		}
		cm.watcher = nil
		slog.Info("Config watcher closed")
	}

	return nil
}
