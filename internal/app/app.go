// Package app provides application lifecycle management for the vsync daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/vsync-reactor/internal/config"
)

// VsyncApp encapsulates all components needed to run the vsync daemon.
// It provides lifecycle management and graceful shutdown capabilities
type VsyncApp struct {
	config          *config.Config
	components      *AppComponents
	httpServer      *http.Server
	lock            *displayLock
	ownTelemetry    bool
	shutdownTimeout time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
	listener   net.Listener
	ready      chan struct{}
}

// Start runs the vsync generator, the config watcher and the HTTP server
// until ctx is cancelled, Stop is called, or one of them fails. Resources
// are released before Start returns. An app can be started once.
func (app *VsyncApp) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.mu.Lock()
	if app.done != nil {
		app.mu.Unlock()
		return fmt.Errorf("app already started")
	}
	app.cancelFunc = cancel
	app.done = make(chan struct{})
	app.mu.Unlock()
	defer close(app.done)

	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err), app.release())
	}
	app.mu.Lock()
	app.listener = listener
	app.mu.Unlock()
	close(app.ready)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.components.Generator.Start(gctx)
	})

	if cm := app.components.ConfigManager; cm != nil {
		g.Go(func() error {
			err := cm.WatchConfig(gctx)
			if gctx.Err() != nil {
				return nil
			}
			// Watching is best effort; the daemon keeps its last applied configuration.
			slog.Error("Config watcher stopped", "error", err)
			return nil
		})
	}

	g.Go(func() error {
		slog.Info("Server listening", "address", listener.Addr().String())
		if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	err = errors.Join(err, app.release())
	if err == nil {
		slog.Info("Server shutdown complete")
	}
	return err
}

// Stop cancels a running app and waits for Start to return
func (app *VsyncApp) Stop() {
	app.mu.Lock()
	cancel, done := app.cancelFunc, app.done
	app.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// release tears down what NewVsyncApp acquired, in reverse order
func (app *VsyncApp) release() error {
	var errs []error
	if err := app.components.Generator.Stop(); err != nil {
		errs = append(errs, err)
	}
	stats := app.components.Generator.Stats()
	slog.Info("Vsync generator stopped",
		"frames", stats.Frames,
		"resync_samples", stats.ResyncSamples,
		"period", stats.Period)
	if cm := app.components.ConfigManager; cm != nil {
		if err := cm.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := app.components.Reactor.Close(); err != nil {
		errs = append(errs, err)
	}
	if app.ownTelemetry {
		ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
		defer cancel()
		if err := app.components.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := app.lock.Release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Ready returns a channel closed once the HTTP listener is bound
func (app *VsyncApp) Ready() <-chan struct{} {
	return app.ready
}

// Addr returns the bound listener address, or nil before Start binds it
func (app *VsyncApp) Addr() net.Addr {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.listener == nil {
		return nil
	}
	return app.listener.Addr()
}

// GetConfig returns the configuration the app was built with
func (app *VsyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *VsyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired components
func (app *VsyncApp) Components() *AppComponents {
	return app.components
}
