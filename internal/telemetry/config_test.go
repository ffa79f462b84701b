package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.Equal(t, DefaultSampling, (&TracingConfig{}).GetSampling())
	assert.Equal(t, DefaultMetricsInterval, (&MetricsConfig{}).GetInterval())

	var prom *PrometheusConfig
	assert.Equal(t, DefaultMetricsPath, prom.GetPath())

	cfg = &Config{ServiceName: "primary", ServiceVersion: "v1.2.3", Endpoint: "otel:4318"}
	assert.Equal(t, "primary", cfg.GetServiceName())
	assert.Equal(t, "v1.2.3", cfg.GetServiceVersion())
	assert.Equal(t, "otel:4318", cfg.GetEndpoint())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{
			name:   "nil config",
			config: nil,
		},
		{
			name:   "disabled config skips validation",
			config: &Config{Tracing: &TracingConfig{Enabled: true, Sampling: 7}},
		},
		{
			name: "valid tracing and metrics",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: 0.5},
				Metrics: &MetricsConfig{Enabled: true, Interval: 5 * time.Second},
			},
		},
		{
			name: "sampling above one",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: 1.5},
			},
			wantErr: "tracing: sampling must be between 0.0 and 1.0",
		},
		{
			name: "negative sampling",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: -0.1},
			},
			wantErr: "tracing: sampling must be between 0.0 and 1.0",
		},
		{
			name: "negative interval",
			config: &Config{
				Enabled: true,
				Metrics: &MetricsConfig{Enabled: true, Interval: -time.Second},
			},
			wantErr: "metrics: interval must not be negative",
		},
		{
			name: "no exporter",
			config: &Config{
				Enabled: true,
				Metrics: &MetricsConfig{Enabled: true, DisableOTLP: true},
			},
			wantErr: "metrics: no exporter enabled",
		},
		{
			name: "prometheus only",
			config: &Config{
				Enabled: true,
				Metrics: &MetricsConfig{
					Enabled:     true,
					DisableOTLP: true,
					Prometheus:  &PrometheusConfig{Enabled: true, Path: "/prom"},
				},
			},
		},
		{
			name: "relative prometheus path",
			config: &Config{
				Enabled: true,
				Metrics: &MetricsConfig{
					Enabled:    true,
					Prometheus: &PrometheusConfig{Enabled: true, Path: "metrics"},
				},
			},
			wantErr: "metrics: prometheus path must start with '/'",
		},
		{
			name: "errors are joined",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: 2},
				Metrics: &MetricsConfig{Enabled: true, Interval: -time.Second},
			},
			wantErr: "metrics: interval must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_YAML(t *testing.T) {
	t.Parallel()

	input := `
enabled: true
serviceName: display-0
endpoint: collector:4318
insecure: true
tracing:
  enabled: true
  sampling: 0.25
metrics:
  enabled: true
  interval: 30s
  prometheus:
    enabled: true
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(input), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "display-0", cfg.GetServiceName())
	assert.True(t, cfg.Insecure)
	require.NotNil(t, cfg.Tracing)
	assert.InDelta(t, 0.25, cfg.Tracing.GetSampling(), 1e-9)
	require.NotNil(t, cfg.Metrics)
	assert.Equal(t, 30*time.Second, cfg.Metrics.GetInterval())
	assert.True(t, cfg.Metrics.PrometheusEnabled())
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Prometheus.GetPath())
}
