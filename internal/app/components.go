package app

import (
	"github.com/stacklok/vsync-reactor/internal/config"
	"github.com/stacklok/vsync-reactor/internal/hwvsync"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/service"
	"github.com/stacklok/vsync-reactor/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Reactor models the display's vsync timing
	Reactor *reactor.Reactor

	// Generator feeds the reactor with vsync samples and present fences
	Generator hwvsync.Generator

	// DisplayService answers timing queries for the API
	DisplayService service.DisplayService

	// Applier keeps the reactor in line with configuration reloads
	Applier *Applier

	// ConfigManager watches the configuration file (optional)
	ConfigManager config.ConfigManager

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
