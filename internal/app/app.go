// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/internal/collector"
	"github.com/page-harvest/harvest/internal/config"
	"github.com/page-harvest/harvest/internal/engine"
	"github.com/page-harvest/harvest/internal/fields"
	"github.com/page-harvest/harvest/internal/intent"
	"github.com/page-harvest/harvest/internal/planner"
	"github.com/page-harvest/harvest/internal/ratelimit"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Library     *fields.Library
	RateLimiter ratelimit.RateLimiter
	Collector   *collector.Collector
	IntentModel planner.IntentModel
	Engine      *engine.Engine
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It configures logging, the field catalogue, the shared rate limiter, the
// page collector, the optional language-model intent helper, and the scraping
// engine. If any step fails, an error is returned.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	library := fields.DefaultLibrary()
	logger.Debug().Strs("fields", library.Names()).Msg("Field catalogue loaded")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	coll := collector.New(cfg, rateLimiter)

	// The intent model is key-gated at call time; without an API key it is
	// silently inert and heuristics run alone.
	var intentModel planner.IntentModel = intent.NewOpenAIModel(cfg.IntentModel, cfg.IntentTimeout)

	eng := engine.New(cfg, library, intentModel, coll)

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Library:     library,
		RateLimiter: rateLimiter,
		Collector:   coll,
		IntentModel: intentModel,
		Engine:      eng,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// Close gracefully shuts down the application.
//
// Browser sessions are scoped to individual fetch batches and close with
// them, so shutdown only has to flush logging state.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().
		Dur("uptime", time.Since(a.startTime)).
		Msg("Shutting down application")
	return nil
}
