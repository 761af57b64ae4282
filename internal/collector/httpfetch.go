package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/internal/config"
	"github.com/page-harvest/harvest/internal/ratelimit"
	"github.com/page-harvest/harvest/pkg/models"
)

// httpFetcher is the plain-HTTP rung of the degradation ladder. It follows
// redirects, mimics a desktop browser, and converts every failure into the
// page's Error field so callers get one result per URL.
type httpFetcher struct {
	client   *http.Client
	headers  map[string]string
	limiter  ratelimit.RateLimiter
	maxConns int
}

func newHTTPFetcher(cfg *config.Config, limiter ratelimit.RateLimiter) *httpFetcher {
	transport := &http.Transport{
		MaxIdleConns:        cfg.HTTPMaxConnections,
		MaxIdleConnsPerHost: cfg.HTTPMaxConnections,
		MaxConnsPerHost:     cfg.HTTPMaxConnections,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	headers := map[string]string{
		"User-Agent":      cfg.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
	for key, value := range cfg.ExtraHeaders {
		headers[key] = value
	}

	return &httpFetcher{
		client: &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: transport,
		},
		headers:  headers,
		limiter:  limiter,
		maxConns: cfg.HTTPMaxConnections,
	}
}

// fetchAll retrieves every URL concurrently, bounded by the connection
// limit, with results in input order.
func (f *httpFetcher) fetchAll(ctx context.Context, urls []string, onDone func(done, total int)) []models.PageContent {
	pages := make([]models.PageContent, len(urls))
	sem := make(chan struct{}, f.maxConns)
	var wg sync.WaitGroup
	var done int
	var doneMu sync.Mutex

	for i, pageURL := range urls {
		wg.Add(1)
		go func(slot int, target string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pages[slot] = f.fetchOne(ctx, target)

			if onDone != nil {
				doneMu.Lock()
				done++
				onDone(done, len(urls))
				doneMu.Unlock()
			}
		}(i, pageURL)
	}

	wg.Wait()
	return pages
}

func (f *httpFetcher) fetchOne(ctx context.Context, pageURL string) models.PageContent {
	if err := f.limiter.Wait(ctx, pageURL); err != nil {
		return models.PageContent{URL: pageURL, FinalURL: pageURL, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return models.PageContent{URL: pageURL, FinalURL: pageURL, Error: err.Error()}
	}
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return models.PageContent{URL: pageURL, FinalURL: pageURL, Error: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.PageContent{
			URL:        pageURL,
			FinalURL:   resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
			Error:      err.Error(),
		}
	}

	finalURL := resp.Request.URL.String()

	if resp.StatusCode >= 400 {
		log.Debug().Str("url", pageURL).Int("status", resp.StatusCode).Msg("HTTP fetch returned error status")
		return models.PageContent{
			URL:        pageURL,
			FinalURL:   finalURL,
			StatusCode: resp.StatusCode,
			HTML:       string(body),
			Error:      fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	log.Debug().Str("url", pageURL).Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("HTTP fetch completed")

	return models.PageContent{
		URL:        pageURL,
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}
}
