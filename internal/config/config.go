package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/page-harvest/harvest/internal/utils/headers"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP fallback transport
	HTTPTimeout        time.Duration
	HTTPMaxConnections int
	UserAgent          string
	Proxy              string
	ExtraHeaders       map[string]string

	// Browser automation
	NavigationTimeout  time.Duration
	MaxConcurrentPages int
	BrowserHeadless    bool
	ViewportWidth      int
	ViewportHeight     int
	AutoScrollPause    time.Duration
	ChromePath         string
	DisableBrowser     bool

	// Rate limiting (per domain, shared by both transports)
	RateLimitRPS   float64
	RateLimitBurst int

	// Page limits
	DefaultPageLimit int
	MaxPages         int

	// Intent model
	IntentModel   string
	IntentTimeout time.Duration
}

// Load builds a Config by combining defaults, environment variables, and CLI
// flags. Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	// Override from environment variables
	if v := os.Getenv("HARVEST_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("HARVEST_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HARVEST_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HARVEST_DISABLE_BROWSER"); v == "1" || v == "true" {
		cfg.DisableBrowser = true
	}
	if v := os.Getenv("HARVEST_INTENT_MODEL"); v != "" {
		cfg.IntentModel = v
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
					cfg.NavigationTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("no-browser"); f != nil {
			if f.Value.String() == "true" {
				cfg.DisableBrowser = true
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if values, err := cmd.Flags().GetStringArray("header"); err == nil && len(values) > 0 {
			cfg.ExtraHeaders = headers.Parse(values)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config populated with the built-in defaults
func Defaults() *Config {
	return &Config{
		LogLevel:           DefaultLogLevel,
		JSONLog:            DefaultJSONLog,
		HTTPTimeout:        DefaultHTTPTimeout,
		HTTPMaxConnections: DefaultHTTPMaxConnections,
		UserAgent:          DefaultUserAgent,
		NavigationTimeout:  DefaultNavigationTimeout,
		MaxConcurrentPages: DefaultMaxConcurrentPages,
		BrowserHeadless:    DefaultBrowserHeadless,
		ViewportWidth:      DefaultViewportWidth,
		ViewportHeight:     DefaultViewportHeight,
		AutoScrollPause:    DefaultAutoScrollPause,
		RateLimitRPS:       DefaultRateLimitRPS,
		RateLimitBurst:     DefaultRateLimitBurst,
		DefaultPageLimit:   DefaultPageLimit,
		MaxPages:           MaxPageLimit,
		IntentModel:        DefaultIntentModel,
		IntentTimeout:      DefaultIntentTimeout,
	}
}
