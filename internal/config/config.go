// Package config provides configuration loading and management for the vsync daemon.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/vsync-reactor/internal/telemetry"
)

const (
	// DefaultDisplayName is used when displayName is not set
	DefaultDisplayName = "default"

	// DefaultPendingFenceLimit is the fence backlog size used when none is configured
	DefaultPendingFenceLimit = 20

	// MaxListeners mirrors the reactor's listener limit
	MaxListeners = 3

	// EnvPrefix prefixes environment variables read by the CLI
	EnvPrefix = "VSYNC"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// DisplayName identifies the display in API answers and telemetry.
	// Defaults to "default" if not specified
	DisplayName string           `yaml:"displayName,omitempty"`
	Display     DisplayConfig    `yaml:"display"`
	Reactor     ReactorConfig    `yaml:"reactor,omitempty"`
	Listeners   []ListenerConfig `yaml:"listeners,omitempty"`
	Generator   GeneratorConfig  `yaml:"generator,omitempty"`

	// LockFile is taken exclusively while the daemon drives the display
	LockFile  string            `yaml:"lockFile,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// DisplayConfig describes the refresh timing of the display
type DisplayConfig struct {
	// Period is the refresh period, e.g. 16.666666ms for 60Hz
	Period time.Duration `yaml:"period"`

	// MinVsyncDistance is the closest two dispatches of one listener may land.
	// Zero keeps the dispatcher default.
	MinVsyncDistance time.Duration `yaml:"minVsyncDistance,omitempty"`
}

// ReactorConfig tunes the vsync reactor
type ReactorConfig struct {
	// PendingFenceLimit bounds the unsettled present fence backlog.
	// Zero means DefaultPendingFenceLimit.
	PendingFenceLimit   int  `yaml:"pendingFenceLimit,omitempty"`
	IgnorePresentFences bool `yaml:"ignorePresentFences,omitempty"`
}

// ListenerConfig registers a vsync listener at startup
type ListenerConfig struct {
	Name        string        `yaml:"name"`
	PhaseOffset time.Duration `yaml:"phaseOffset"`
}

// GeneratorConfig shapes the software vsync source
type GeneratorConfig struct {
	// Jitter is the maximum deviation applied to each resync sample
	Jitter time.Duration `yaml:"jitter,omitempty"`

	// FenceLatency is how long after its vsync a present fence signals
	FenceLatency time.Duration `yaml:"fenceLatency,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var config Config
	if err := dec.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config file is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetDisplayName returns the display name, using "default" if not specified
func (c *Config) GetDisplayName() string {
	if c.DisplayName == "" {
		return DefaultDisplayName
	}
	return c.DisplayName
}

// GetPendingFenceLimit returns the fence backlog limit, using
// DefaultPendingFenceLimit if not specified
func (c *ReactorConfig) GetPendingFenceLimit() int {
	if c.PendingFenceLimit == 0 {
		return DefaultPendingFenceLimit
	}
	return c.PendingFenceLimit
}

// Listener returns the configured listener called name
func (c *Config) Listener(name string) (ListenerConfig, bool) {
	for _, l := range c.Listeners {
		if l.Name == name {
			return l, true
		}
	}
	return ListenerConfig{}, false
}

// Validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Display.Period <= 0 {
		return fmt.Errorf("display.period must be positive")
	}
	if c.Display.MinVsyncDistance < 0 {
		return fmt.Errorf("display.minVsyncDistance must not be negative")
	}
	if c.Display.MinVsyncDistance >= c.Display.Period {
		return fmt.Errorf("display.minVsyncDistance (%v) must be shorter than the period (%v)",
			c.Display.MinVsyncDistance, c.Display.Period)
	}

	if c.Reactor.PendingFenceLimit < 0 {
		return fmt.Errorf("reactor.pendingFenceLimit must be at least 1")
	}

	if err := c.validateListeners(); err != nil {
		return err
	}

	if c.Generator.Jitter < 0 {
		return fmt.Errorf("generator.jitter must not be negative")
	}
	if c.Generator.FenceLatency < 0 {
		return fmt.Errorf("generator.fenceLatency must not be negative")
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

func (c *Config) validateListeners() error {
	if len(c.Listeners) > MaxListeners {
		return fmt.Errorf("at most %d listeners can be configured, got %d", MaxListeners, len(c.Listeners))
	}

	names := make(map[string]bool)
	for i, l := range c.Listeners {
		if l.Name == "" {
			return fmt.Errorf("listeners[%d]: name is required", i)
		}
		if names[l.Name] {
			return fmt.Errorf("listeners[%d]: duplicate listener name '%s'", i, l.Name)
		}
		names[l.Name] = true

		if l.PhaseOffset <= -c.Display.Period || l.PhaseOffset >= c.Display.Period {
			return fmt.Errorf("listeners[%d] (%s): phaseOffset %v must be within one period (%v)",
				i, l.Name, l.PhaseOffset, c.Display.Period)
		}
	}
	return nil
}
