package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/vsync-reactor/internal/api"
	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/config"
	"github.com/stacklok/vsync-reactor/internal/dispatch"
	"github.com/stacklok/vsync-reactor/internal/hwvsync"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/service"
	"github.com/stacklok/vsync-reactor/internal/telemetry"
	"github.com/stacklok/vsync-reactor/internal/tracker"
)

const (
	defaultHTTPAddress     = ":8080"
	defaultRequestTimeout  = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// VsyncAppOptions is a function that configures the vsync app builder
type VsyncAppOptions func(*vsyncAppConfig) error

// vsyncAppConfig collects the builder inputs. Component overrides exist
// primarily for testing.
type vsyncAppConfig struct {
	config        *config.Config
	configManager config.ConfigManager
	clock         clock.TimerClock
	telemetry     *telemetry.Telemetry

	// HTTP server options
	address         string
	middlewares     []func(http.Handler) http.Handler
	requestTimeout  time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

func baseConfig(opts ...VsyncAppOptions) (*vsyncAppConfig, error) {
	cfg := &vsyncAppConfig{
		clock:           clock.System(),
		address:         defaultHTTPAddress,
		requestTimeout:  defaultRequestTimeout,
		readTimeout:     defaultReadTimeout,
		writeTimeout:    defaultWriteTimeout,
		idleTimeout:     defaultIdleTimeout,
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil && cfg.configManager != nil {
		cfg.config = cfg.configManager.GetConfig()
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.config.Display.Period <= 0 {
		return nil, fmt.Errorf("display period must be positive")
	}

	return cfg, nil
}

// NewVsyncApp builds the daemon: it takes the display lock, then wires
// telemetry, the reactor, the software vsync source, the display service
// and the HTTP server.
func NewVsyncApp(
	ctx context.Context,
	opts ...VsyncAppOptions,
) (_ *VsyncApp, retErr error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	lock, err := acquireDisplayLock(cfg.config.LockFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = lock.Release()
		}
	}()

	ownTelemetry := cfg.telemetry == nil
	if ownTelemetry {
		cfg.telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.config.Telemetry))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			if retErr != nil {
				_ = cfg.telemetry.Shutdown(ctx)
			}
		}()
	}

	components, err := buildDisplayComponents(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build display components: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = components.Reactor.Close()
		}
	}()

	httpServer, err := buildHTTPServer(cfg, components.DisplayService)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	return &VsyncApp{
		config:          cfg.config,
		components:      components,
		httpServer:      httpServer,
		lock:            lock,
		ownTelemetry:    ownTelemetry,
		shutdownTimeout: cfg.shutdownTimeout,
		ready:           make(chan struct{}),
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) VsyncAppOptions {
	return func(cfg *vsyncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithConfigManager applies reloads from cm while the app runs. The
// current configuration of cm is used unless WithConfig is also given.
func WithConfigManager(cm config.ConfigManager) VsyncAppOptions {
	return func(cfg *vsyncAppConfig) error {
		cfg.configManager = cm
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) VsyncAppOptions {
	return func(cfg *vsyncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) VsyncAppOptions {
	return func(cfg *vsyncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithClock replaces the system clock (for testing)
func WithClock(clk clock.TimerClock) VsyncAppOptions {
	return func(cfg *vsyncAppConfig) error {
		if clk == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		cfg.clock = clk
		return nil
	}
}

// WithTelemetry uses providers owned by the caller. They are not shut down
// by the app.
func WithTelemetry(t *telemetry.Telemetry) VsyncAppOptions {
	return func(cfg *vsyncAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// WithShutdownTimeout bounds the graceful HTTP shutdown
func WithShutdownTimeout(d time.Duration) VsyncAppOptions {
	return func(cfg *vsyncAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		cfg.shutdownTimeout = d
		return nil
	}
}

// buildDisplayComponents builds the reactor and everything that drives it
func buildDisplayComponents(b *vsyncAppConfig) (*AppComponents, error) {
	slog.Info("Initializing display components")

	c := b.config
	metrics, err := telemetry.NewReactorMetrics(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create reactor metrics: %w", err)
	}

	tr := tracker.NewFixed(c.Display.Period)
	var dispatchOpts []dispatch.Option
	if c.Display.MinVsyncDistance > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithMinVsyncDistance(c.Display.MinVsyncDistance))
	}
	dispatcher := dispatch.NewTimerDispatcher(b.clock, tr, dispatchOpts...)

	r := reactor.New(b.clock, dispatcher, tr, c.Reactor.GetPendingFenceLimit(),
		reactor.WithMetrics(metrics),
		reactor.WithLogger(slog.Default().With("display", c.GetDisplayName())))

	generator := hwvsync.New(r, b.clock, c.Display.Period,
		hwvsync.WithJitter(c.Generator.Jitter),
		hwvsync.WithFenceLatency(c.Generator.FenceLatency))

	applier := NewApplier(r, generator, c.Display.Period, nil)
	if err := applier.Apply(c); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to apply configuration: %w", err)
	}
	if b.configManager != nil {
		b.configManager.AddValidator(applier)
		b.configManager.Subscribe(applier.OnConfigChange)
	}

	svc, err := service.New(r, b.clock,
		service.WithDisplayName(c.GetDisplayName()),
		service.WithModeSetter(generator),
		service.WithReadinessProbe(generatorProbe(generator)),
		service.WithTracer(b.telemetry.TracerProvider().Tracer(service.ServiceTracerName)),
	)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to create display service: %w", err)
	}

	slog.Info("Display components initialized successfully",
		"display", c.GetDisplayName(),
		"period", c.Display.Period,
		"listeners", len(c.Listeners))

	return &AppComponents{
		Reactor:        r,
		Generator:      generator,
		DisplayService: svc,
		Applier:        applier,
		ConfigManager:  b.configManager,
		Telemetry:      b.telemetry,
	}, nil
}

// generatorProbe reports the display ready while the generator emits edges
func generatorProbe(g hwvsync.Generator) service.ReadinessProbe {
	return func(context.Context) error {
		if !g.Running() {
			return errors.New("vsync generator is not running")
		}
		return nil
	}
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(
	b *vsyncAppConfig,
	svc service.DisplayService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing go first so rejected requests are still observed
	metricsMiddleware, err := telemetry.MetricsMiddleware(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
	}
	middlewares := append([]func(http.Handler) http.Handler{
		metricsMiddleware,
		telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
	}, b.middlewares...)

	metricsHandler, metricsPath := b.telemetry.MetricsHandler()
	router := api.NewServer(svc,
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(metricsHandler, metricsPath),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
