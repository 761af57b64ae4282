package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	// Headers mimic a common desktop browser; some sites serve bot-shaped
	// user agents an empty shell.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	DefaultHTTPTimeout        = 20 * time.Second
	DefaultHTTPMaxConnections = 6

	DefaultNavigationTimeout  = 20 * time.Second
	DefaultMaxConcurrentPages = 2
	DefaultBrowserHeadless    = true
	DefaultViewportWidth      = 1280
	DefaultViewportHeight     = 720
	DefaultAutoScrollPause    = 350 * time.Millisecond

	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10

	DefaultPageLimit = 1
	MaxPageLimit     = 5

	DefaultIntentModel   = "gpt-4o-mini"
	DefaultIntentTimeout = 20 * time.Second
)
