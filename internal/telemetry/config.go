package telemetry

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultServiceName is the service name reported when none is configured
	DefaultServiceName = "vsync-reactor"

	// DefaultEndpoint is the default OTLP HTTP collector endpoint
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling samples one trace in ten. The HTTP API is low volume;
	// reactor hot paths are never traced.
	DefaultSampling = 0.1

	// DefaultMetricsInterval is how often metrics are pushed over OTLP
	DefaultMetricsInterval = 15 * time.Second

	// DefaultMetricsPath is where the Prometheus handler is mounted
	DefaultMetricsPath = "/metrics"
)

// Config is the telemetry section of the daemon configuration
type Config struct {
	// Enabled turns telemetry on. When false every provider is a no-op.
	Enabled bool `yaml:"enabled"`

	// ServiceName defaults to "vsync-reactor"
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion defaults to the build version
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the OTLP collector as "host:port"
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure sends OTLP over plain HTTP
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig configures span export
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of traces kept, in [0, 1]. Zero means DefaultSampling.
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig configures metric export. Metrics can be pushed over OTLP,
// scraped through Prometheus, or both.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval between OTLP pushes. Zero means DefaultMetricsInterval.
	Interval time.Duration `yaml:"interval,omitempty"`

	// DisableOTLP turns off the push exporter
	DisableOTLP bool `yaml:"disableOTLP,omitempty"`

	// Prometheus exposes a scrape handler on the API server
	Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`
}

// PrometheusConfig configures the scrape handler
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path defaults to "/metrics"
	Path string `yaml:"path,omitempty"`
}

// GetServiceName returns the service name or DefaultServiceName
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version or "unknown"
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the endpoint or DefaultEndpoint
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetSampling returns the sampling ratio or DefaultSampling.
// An explicit 0 cannot be told apart from an unset value in YAML.
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0 {
		return DefaultSampling
	}
	return c.Sampling
}

// GetInterval returns the push interval or DefaultMetricsInterval
func (c *MetricsConfig) GetInterval() time.Duration {
	if c.Interval == 0 {
		return DefaultMetricsInterval
	}
	return c.Interval
}

// PrometheusEnabled reports whether the scrape handler should be served
func (c *MetricsConfig) PrometheusEnabled() bool {
	return c != nil && c.Enabled && c.Prometheus != nil && c.Prometheus.Enabled
}

// GetPath returns the scrape path or DefaultMetricsPath
func (c *PrometheusConfig) GetPath() string {
	if c == nil || c.Path == "" {
		return DefaultMetricsPath
	}
	return c.Path
}

// Validate checks the telemetry configuration. A nil or disabled config is valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	return errors.Join(errs...)
}

// Validate checks the tracing configuration
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Sampling < 0 || c.Sampling > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", c.Sampling)
	}
	return nil
}

// Validate checks the metrics configuration
func (c *MetricsConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %v", c.Interval)
	}
	if c.DisableOTLP && !c.PrometheusEnabled() {
		return errors.New("no exporter enabled: enable prometheus or keep OTLP")
	}
	if c.PrometheusEnabled() && c.Prometheus.Path != "" && c.Prometheus.Path[0] != '/' {
		return fmt.Errorf("prometheus path must start with '/', got %q", c.Prometheus.Path)
	}
	return nil
}
