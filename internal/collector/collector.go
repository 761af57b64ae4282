// Package collector retrieves rendered HTML for a plan's URLs. It prefers
// headless Chrome and degrades along an explicit ladder: browser batch,
// per-URL HTTP fallback for failed page tasks, or HTTP-only when the browser
// session cannot be established at all. Callers always receive exactly one
// PageContent per unique input URL, in input order.
package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/internal/config"
	"github.com/page-harvest/harvest/internal/ratelimit"
	"github.com/page-harvest/harvest/pkg/models"
)

// Transport values recorded in fetch metadata
const (
	TransportBrowser = "browser"
	TransportHTTP    = "http"
)

// Metadata describes how a fetch batch was actually served
type Metadata struct {
	Transport    string   `json:"transport"`
	FallbackURLs []string `json:"fallback_urls,omitempty"`
}

// Collector fetches batches of pages with bounded concurrency
type Collector struct {
	cfg      *config.Config
	limiter  ratelimit.RateLimiter
	fallback *httpFetcher

	// OnPageDone, when set, is invoked after each page completes. Used by
	// the CLI for progress display.
	OnPageDone func(done, total int)

	lastMu    sync.Mutex
	lastPages []models.PageContent
}

// New creates a collector. The limiter is shared by both transports.
func New(cfg *config.Config, limiter ratelimit.RateLimiter) *Collector {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if limiter == nil {
		limiter = ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return &Collector{
		cfg:      cfg,
		limiter:  limiter,
		fallback: newHTTPFetcher(cfg, limiter),
	}
}

type pageResult struct {
	page models.PageContent
	err  error
}

// FetchAll retrieves every URL, deduplicated preserving first-seen order.
// The returned pages are positionally aligned to the deduplicated input list
// regardless of completion order.
func (c *Collector) FetchAll(ctx context.Context, urls []string, interactions []models.InteractionStep) ([]models.PageContent, []string, Metadata) {
	unique := dedupe(urls)
	if len(unique) == 0 {
		return nil, nil, Metadata{Transport: TransportBrowser}
	}

	var warnings []string

	if !c.browserAvailable() {
		warnings = append(warnings, "Browser automation is unavailable; falling back to HTTP fetching.")
		pages := c.fetchAllHTTP(ctx, unique)
		c.rememberPages(pages)
		return pages, warnings, Metadata{Transport: TransportHTTP}
	}

	session, err := newBrowserSession(c.cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Browser session failed; using HTTP fallback")
		warnings = append(warnings, fmt.Sprintf("Browser automation failed; falling back to static HTTP fetching. (%v)", err))
		pages := c.fetchAllHTTP(ctx, unique)
		c.rememberPages(pages)
		return pages, warnings, Metadata{Transport: TransportHTTP}
	}
	defer session.Close()

	results := c.runBrowserBatch(ctx, session, unique, interactions)

	pages := make([]models.PageContent, len(unique))
	var fallbackURLs []string
	for i, result := range results {
		if result.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: browser task failed (%v); using HTTP fallback.", unique[i], result.err))
			pages[i] = c.fallback.fetchOne(ctx, unique[i])
			fallbackURLs = append(fallbackURLs, unique[i])
			continue
		}
		pages[i] = result.page
	}

	c.rememberPages(pages)
	metadata := Metadata{Transport: TransportBrowser, FallbackURLs: fallbackURLs}
	return pages, warnings, metadata
}

// runBrowserBatch fans page tasks out over the session, bounded by the
// configured concurrent-page gate, collecting results into index-keyed slots.
func (c *Collector) runBrowserBatch(ctx context.Context, session *browserSession, urls []string, interactions []models.InteractionStep) []pageResult {
	results := make([]pageResult, len(urls))
	sem := make(chan struct{}, c.maxConcurrentPages())
	var wg sync.WaitGroup
	var done int
	var doneMu sync.Mutex

	for i, pageURL := range urls {
		wg.Add(1)
		go func(slot int, target string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := c.limiter.Wait(ctx, target); err != nil {
				results[slot] = pageResult{err: err}
			} else {
				page, err := session.OpenPage(ctx, target, interactions)
				results[slot] = pageResult{page: page, err: err}
			}

			if c.OnPageDone != nil {
				doneMu.Lock()
				done++
				c.OnPageDone(done, len(urls))
				doneMu.Unlock()
			}
		}(i, pageURL)
	}

	wg.Wait()
	return results
}

func (c *Collector) fetchAllHTTP(ctx context.Context, urls []string) []models.PageContent {
	return c.fallback.fetchAll(ctx, urls, c.OnPageDone)
}

func (c *Collector) browserAvailable() bool {
	if c.cfg.DisableBrowser {
		return false
	}
	return c.cfg.ChromePath != "" || FindChrome() != ""
}

func (c *Collector) maxConcurrentPages() int {
	if c.cfg.MaxConcurrentPages > 0 {
		return c.cfg.MaxConcurrentPages
	}
	return 1
}

// LastPages returns a copy of the pages from the most recent FetchAll,
// rendered HTML included. Used by the CLI's page snapshot dump.
func (c *Collector) LastPages() []models.PageContent {
	c.lastMu.Lock()
	defer c.lastMu.Unlock()
	return append([]models.PageContent{}, c.lastPages...)
}

func (c *Collector) rememberPages(pages []models.PageContent) {
	c.lastMu.Lock()
	c.lastPages = pages
	c.lastMu.Unlock()
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	ordered := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			ordered = append(ordered, u)
		}
	}
	return ordered
}
