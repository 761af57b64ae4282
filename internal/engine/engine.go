// Package engine wires the prompt planner, page collector, structural
// analyzer, and record refiner into the single Run entry point the CLI
// consumes.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/internal/analyzer"
	"github.com/page-harvest/harvest/internal/collector"
	"github.com/page-harvest/harvest/internal/config"
	"github.com/page-harvest/harvest/internal/fields"
	"github.com/page-harvest/harvest/internal/planner"
	"github.com/page-harvest/harvest/internal/refiner"
	"github.com/page-harvest/harvest/pkg/models"
)

// Engine executes the full prompt-to-records pipeline
type Engine struct {
	cfg       *config.Config
	planner   *planner.PromptPlanner
	collector *collector.Collector
	analyzer  *analyzer.Analyzer
	refiner   *refiner.Refiner
}

// New assembles an engine. A nil intent model disables language-model
// assistance; heuristics still run.
func New(cfg *config.Config, library *fields.Library, intent planner.IntentModel, coll *collector.Collector) *Engine {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if library == nil {
		library = fields.DefaultLibrary()
	}
	if coll == nil {
		coll = collector.New(cfg, nil)
	}
	return &Engine{
		cfg:       cfg,
		planner:   planner.New(library, intent),
		collector: coll,
		analyzer:  analyzer.New(),
		refiner:   refiner.New(),
	}
}

// Collector exposes the engine's page collector so the CLI can attach
// progress callbacks.
func (e *Engine) Collector() *collector.Collector {
	return e.collector
}

// Run turns a natural language prompt into a scrape outcome. Planner
// rejections surface as errors; everything downstream degrades into the
// outcome's warnings and errors lists instead of failing the run.
func (e *Engine) Run(ctx context.Context, prompt string, maxPages int) (*models.ScrapeOutcome, error) {
	plan, err := e.planner.Plan(ctx, prompt, maxPages)
	if err != nil {
		return nil, err
	}

	pageLimit := e.resolvePageLimit(plan)
	urls := plan.ExpandURLs(pageLimit)

	log.Info().
		Str("seed", plan.SeedURL).
		Strs("fields", plan.FieldNames()).
		Int("pages", len(urls)).
		Msg("Scrape plan ready")

	warnings := append([]string{}, plan.Notes...)
	if plan.Pagination == nil && pageLimit > 1 && len(plan.ExtraURLs) == 0 {
		warnings = append(warnings, "Pagination requested but no pagination pattern was detected; scraping only the seed URL.")
	}

	pages, fetchWarnings, fetchMetadata := e.collector.FetchAll(ctx, urls, plan.Interactions)
	warnings = append(warnings, fetchWarnings...)

	var items []map[string]string
	var errs []string
	var sourceURLs []string

	for _, page := range pages {
		pageURL := page.FinalURL
		if pageURL == "" {
			pageURL = page.URL
		}
		sourceURLs = append(sourceURLs, pageURL)

		if !page.Success() {
			reason := page.Error
			if reason == "" {
				reason = "unknown error"
			}
			errs = append(errs, fmt.Sprintf("%s: %s", pageURL, reason))
			continue
		}

		extracted, pageWarnings := e.analyzer.ExtractItems(page.HTML, plan, pageURL)
		if len(extracted) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s: no matching data located.", pageURL))
		} else {
			items = append(items, extracted...)
		}
		for _, message := range pageWarnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", pageURL, message))
		}
	}

	refined, cleaningStats, cleaningWarnings := e.refiner.Refine(items, plan)
	warnings = append(warnings, cleaningWarnings...)

	outcome := &models.ScrapeOutcome{
		Plan:       plan,
		Items:      refined,
		Warnings:   warnings,
		Errors:     errs,
		SourceURLs: sourceURLs,
		Stats: map[string]any{
			"fetch":    fetchMetadata,
			"cleaning": cleaningStats,
		},
	}

	log.Info().
		Int("items", len(outcome.Items)).
		Int("warnings", len(outcome.Warnings)).
		Int("errors", len(outcome.Errors)).
		Msg("Scrape completed")

	return outcome, nil
}

// resolvePageLimit clamps the plan's requested page count into the
// configured window.
func (e *Engine) resolvePageLimit(plan *models.ScrapePlan) int {
	requested := plan.RequestedPageCount
	if requested == 0 {
		requested = e.cfg.DefaultPageLimit
	}
	if requested < 1 {
		requested = 1
	}
	if requested > e.cfg.MaxPages {
		requested = e.cfg.MaxPages
	}
	return requested
}
