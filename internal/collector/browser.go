package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/internal/config"
	"github.com/page-harvest/harvest/pkg/models"
)

// browserSession wraps a single headless Chrome instance shared by one fetch
// batch. Page tasks open tabs off the session's browser context; the session
// is torn down unconditionally at batch end (tabs, browser, allocator).
type browserSession struct {
	cfg           *config.Config
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// newBrowserSession launches the browser and verifies it responds. An error
// here engages the session-level HTTP fallback.
func newBrowserSession(cfg *config.Config) (*browserSession, error) {
	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-ipc-flooding-protection", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", cfg.ViewportWidth, cfg.ViewportHeight)),
		chromedp.UserAgent(cfg.UserAgent),
	}

	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if cfg.BrowserHeadless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if cfg.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(cfg.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Warm up to confirm the browser actually launches
	warmCtx, cancel := context.WithTimeout(browserCtx, cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(warmCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().Str("chrome", chromePath).Msg("Browser session started")

	return &browserSession{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close tears the session down: browser context first, then the allocator
func (s *browserSession) Close() {
	s.browserCancel()
	s.allocCancel()
	log.Debug().Msg("Browser session closed")
}

// OpenPage fetches one URL in a fresh tab, runs the plan's interactions, and
// captures the rendered HTML. Navigation timeouts and in-page failures are
// folded into the returned PageContent; a non-nil error signals a task-level
// failure the caller should serve via the per-URL HTTP fallback. The tab is
// always closed before returning.
func (s *browserSession) OpenPage(ctx context.Context, pageURL string, interactions []models.InteractionStep) (models.PageContent, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	navCtx, navCancel := context.WithTimeout(tabCtx, s.cfg.NavigationTimeout)
	defer navCancel()

	var statusCode int64
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Response.URL == pageURL {
			statusCode = resp.Response.Status
		}
	})

	start := time.Now()
	err := chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Brief settle so initial JS can run before interactions
			time.Sleep(300 * time.Millisecond)
			return nil
		}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.PageContent{URL: pageURL, FinalURL: pageURL, Error: fmt.Sprintf("timeout: %v", err)}, nil
		}
		if isNavigationError(err) {
			return models.PageContent{URL: pageURL, FinalURL: pageURL, Error: err.Error()}, nil
		}
		// Browser-level failure; let the caller fall back to HTTP
		return models.PageContent{}, err
	}

	s.runInteractions(tabCtx, pageURL, interactions)

	var html, finalURL string
	captureCtx, captureCancel := context.WithTimeout(tabCtx, s.cfg.NavigationTimeout)
	defer captureCancel()
	err = chromedp.Run(captureCtx,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.PageContent{URL: pageURL, FinalURL: pageURL, Error: fmt.Sprintf("timeout: %v", err)}, nil
		}
		return models.PageContent{}, err
	}

	if finalURL == "" {
		finalURL = pageURL
	}

	log.Debug().
		Str("url", pageURL).
		Int64("status", statusCode).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Page rendered")

	return models.PageContent{
		URL:        pageURL,
		FinalURL:   finalURL,
		StatusCode: int(statusCode),
		HTML:       html,
	}, nil
}

// runInteractions executes the plan's pre-extraction steps. Every step is
// best-effort: failures are logged and skipped, never fatal for the page.
func (s *browserSession) runInteractions(ctx context.Context, pageURL string, interactions []models.InteractionStep) {
	for _, step := range interactions {
		var err error
		switch step.Kind {
		case models.StepScroll:
			count := step.Count
			if count < 1 {
				count = 1
			}
			pause := s.cfg.AutoScrollPause
			if step.WaitMS > 0 {
				pause = time.Duration(step.WaitMS) * time.Millisecond
			}
			err = s.scroll(ctx, count, pause)

		case models.StepWaitForSelector:
			if step.Selector == "" {
				continue
			}
			stepCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
			err = chromedp.Run(stepCtx, chromedp.WaitReady(step.Selector, chromedp.ByQuery))
			cancel()

		case models.StepWait:
			pause := s.cfg.AutoScrollPause
			if step.WaitMS > 0 {
				pause = time.Duration(step.WaitMS) * time.Millisecond
			}
			time.Sleep(pause)

		case models.StepClick:
			if step.Selector == "" {
				continue
			}
			stepCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
			err = chromedp.Run(stepCtx, chromedp.Click(step.Selector, chromedp.ByQuery))
			cancel()

		case models.StepType:
			if step.Selector == "" || step.Value == "" {
				continue
			}
			stepCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
			err = chromedp.Run(stepCtx, chromedp.SendKeys(step.Selector, step.Value, chromedp.ByQuery))
			cancel()

		default:
			log.Debug().Str("kind", step.Kind).Str("url", pageURL).Msg("Ignoring unsupported interaction step")
			continue
		}

		if err != nil {
			log.Warn().Str("kind", step.Kind).Str("url", pageURL).Err(err).Msg("Interaction step failed")
		}
	}
}

func (s *browserSession) scroll(ctx context.Context, count int, pause time.Duration) error {
	for i := 0; i < count; i++ {
		stepCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
		err := chromedp.Run(stepCtx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil),
		)
		cancel()
		if err != nil {
			return err
		}
		time.Sleep(pause)
	}
	return nil
}

// isNavigationError reports whether a chromedp failure belongs to the page
// (bad host, blocked resource) rather than the browser process.
func isNavigationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "net::") || strings.Contains(msg, "page load error")
}
