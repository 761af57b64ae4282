// Package planner translates natural language prompts into actionable scrape
// plans. A local heuristic pass runs first; an optional external intent model
// can refine it, but its failures never surface past this package.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/internal/fields"
	urlutil "github.com/page-harvest/harvest/internal/utils/url"
	"github.com/page-harvest/harvest/pkg/models"
)

var (
	urlRe          = regexp.MustCompile(`(?i)https?://[^\s]+`)
	tokenRe        = regexp.MustCompile(`[a-zA-Z0-9]+`)
	pageRangeRe    = regexp.MustCompile(`(?i)(?:first|top)\s+(\d+)\s+pages?`)
	genericCountRe = regexp.MustCompile(`(?i)(\d+)\s+pages?`)
	pathPageRe     = regexp.MustCompile(`/page/(\d+)`)
)

// IntentModel is the collaborator contract for LLM-backed intent discovery.
// Implementations return nil when they have nothing to suggest.
type IntentModel interface {
	Analyze(ctx context.Context, prompt string) (*models.IntentSuggestion, error)
}

// PromptPlanner builds scrape plans from free-text extraction requests
type PromptPlanner struct {
	library *fields.Library
	intent  IntentModel
}

// New creates a planner over the given field library. The intent model is
// optional; pass nil for heuristic-only planning.
func New(library *fields.Library, intent IntentModel) *PromptPlanner {
	if library == nil {
		library = fields.DefaultLibrary()
	}
	return &PromptPlanner{library: library, intent: intent}
}

// Plan resolves a prompt into a ScrapePlan. maxPages > 0 forces the page
// count regardless of what the prompt or the intent model says.
func (p *PromptPlanner) Plan(ctx context.Context, prompt string, maxPages int) (*models.ScrapePlan, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewInvalidRequest("Prompt cannot be empty.")
	}

	intent := p.heuristicIntent(prompt, maxPages)
	intent.Merge(p.queryIntentModel(ctx, prompt))

	if maxPages > 0 {
		intent.MaxPages = maxPages
	}

	if intent.SeedURL == "" {
		return nil, NewInvalidRequest("No URL found in the request. Please include at least one URL.")
	}
	if err := urlutil.Validate(intent.SeedURL); err != nil {
		return nil, NewInvalidRequest(fmt.Sprintf("Unusable URL %q: %v", intent.SeedURL, err))
	}

	specs := p.library.Resolve(intent.FieldNames)
	if len(specs) == 0 {
		specs = p.library.Defaults()
	}

	pagination := inferPagination(intent.SeedURL)
	description := buildDescription(intent.SeedURL, specs, pagination, intent.MaxPages, intent.Interactions)

	return &models.ScrapePlan{
		SeedURL:            intent.SeedURL,
		Fields:             specs,
		Description:        description,
		ExtraURLs:          intent.ExtraURLs,
		Interactions:       intent.Interactions,
		Pagination:         pagination,
		RequestedPageCount: intent.MaxPages,
		Notes:              intent.Notes,
	}, nil
}

func (p *PromptPlanner) queryIntentModel(ctx context.Context, prompt string) *models.IntentSuggestion {
	if p.intent == nil {
		return nil
	}
	suggestion, err := p.intent.Analyze(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Intent model failed; continuing with heuristic plan")
		return nil
	}
	if suggestion != nil {
		suggestion.Notes = append(suggestion.Notes, "Intent derived from language model analysis.")
	}
	return suggestion
}

func (p *PromptPlanner) heuristicIntent(prompt string, maxPages int) *models.IntentSuggestion {
	urls := extractURLs(prompt)
	specs := p.inferFields(prompt)
	interactions := inferInteractions(prompt)

	requestedPages := maxPages
	if requestedPages <= 0 {
		requestedPages = inferRequestedPages(prompt)
	}

	var notes []string
	if len(urls) == 0 {
		notes = append(notes, "Heuristic planner could not detect a URL.")
	}

	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}

	intent := &models.IntentSuggestion{
		FieldNames:   names,
		MaxPages:     requestedPages,
		Interactions: interactions,
		Notes:        notes,
	}
	if len(urls) > 0 {
		intent.SeedURL = urls[0]
		intent.ExtraURLs = urls[1:]
	}
	return intent
}

func extractURLs(prompt string) []string {
	var urls []string
	for _, match := range urlRe.FindAllString(prompt, -1) {
		urls = append(urls, strings.TrimRight(match, `.,)'"`))
	}
	return urls
}

func (p *PromptPlanner) inferFields(prompt string) []models.FieldSpec {
	promptLower := strings.ToLower(prompt)
	tokens := make(map[string]bool)
	for _, token := range tokenRe.FindAllString(promptLower, -1) {
		tokens[token] = true
	}

	var selected []models.FieldSpec
	has := func(name string) bool {
		for _, spec := range selected {
			if spec.Name == name {
				return true
			}
		}
		return false
	}

	for _, name := range p.library.Names() {
		spec, _ := p.library.Lookup(name)
		matched := tokens[name]
		if !matched {
			for _, syn := range spec.Synonyms {
				if tokens[syn] {
					matched = true
					break
				}
			}
		}
		if matched {
			selected = append(selected, spec.Clone(""))
		}
	}

	// Second pass: comma/slash/"and"-separated lists preceding " from " catch
	// field names stated without a trigger token.
	beforeFrom := strings.SplitN(promptLower, " from ", 2)[0]
	for _, candidate := range splitList(beforeFrom) {
		words := strings.Fields(strings.TrimSpace(candidate))
		if len(words) == 0 {
			continue
		}
		last := words[len(words)-1]
		if spec, ok := p.library.BySynonym(last); ok && !has(spec.Name) {
			selected = append(selected, spec.Clone(""))
		}
	}

	return selected
}

func splitList(s string) []string {
	var parts []string
	for _, chunk := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '/' }) {
		parts = append(parts, strings.Split(chunk, " and ")...)
	}
	return parts
}

func inferRequestedPages(prompt string) int {
	if m := pageRangeRe.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := genericCountRe.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

func inferInteractions(prompt string) []models.InteractionStep {
	promptLower := strings.ToLower(prompt)
	var interactions []models.InteractionStep

	for _, keyword := range []string{"scroll", "infinite", "load more", "keep loading"} {
		if strings.Contains(promptLower, keyword) {
			interactions = append(interactions, models.InteractionStep{
				Kind:   models.StepScroll,
				Count:  5,
				WaitMS: 400,
				Note:   "Auto-scroll inferred from prompt.",
			})
			break
		}
	}

	if strings.Contains(promptLower, "wait") {
		for _, word := range []string{"appear", "render", "load"} {
			if strings.Contains(promptLower, word) {
				interactions = append(interactions, models.InteractionStep{
					Kind:   models.StepWait,
					WaitMS: 1500,
					Note:   "Extra wait inferred from prompt.",
				})
				break
			}
		}
	}

	if strings.Contains(promptLower, "click") && strings.Contains(promptLower, "more") {
		interactions = append(interactions, models.InteractionStep{
			Kind:     models.StepClick,
			Selector: "text=Load more",
			Note:     "Attempt to click 'Load more'.",
		})
	}

	return interactions
}

func inferPagination(seedURL string) *models.PaginationPlan {
	query := queryPart(seedURL)
	if strings.Contains(query, "page=") {
		parameter := "page"
		for _, candidate := range []string{"page", "p", "pg"} {
			if strings.Contains(query, candidate+"=") {
				parameter = candidate
				break
			}
		}
		start := 1
		if v := queryValue(query, parameter); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				start = n
			}
		}
		return &models.PaginationPlan{Mode: models.PaginationQuery, Parameter: parameter, Start: start, Step: 1}
	}

	path := pathPart(seedURL)
	if m := pathPageRe.FindStringSubmatchIndex(path); m != nil {
		start, _ := strconv.Atoi(path[m[2]:m[3]])
		template := path[:m[2]] + "{page}" + path[m[3]:]
		return &models.PaginationPlan{Mode: models.PaginationPath, Template: template, Start: start, Step: 1}
	}

	return nil
}

func queryPart(urlStr string) string {
	if i := strings.Index(urlStr, "?"); i >= 0 {
		return urlStr[i+1:]
	}
	return ""
}

func pathPart(urlStr string) string {
	rest := urlStr
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[i:]
	}
	return ""
}

func queryValue(query, key string) string {
	for _, chunk := range strings.Split(query, "&") {
		if strings.HasPrefix(chunk, key+"=") {
			return chunk[len(key)+1:]
		}
	}
	return ""
}

func buildDescription(seedURL string, specs []models.FieldSpec, pagination *models.PaginationPlan, requestedPages int, interactions []models.InteractionStep) string {
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}

	parts := []string{fmt.Sprintf("Extract %s from %s", strings.Join(names, ", "), seedURL)}
	if pagination != nil {
		parts = append(parts, "scan paginated content")
	}
	if requestedPages > 0 {
		parts = append(parts, fmt.Sprintf("limit to %d page(s)", requestedPages))
	}
	if len(interactions) > 0 {
		kinds := make([]string, len(interactions))
		for i, step := range interactions {
			kinds[i] = step.Kind
		}
		parts = append(parts, "pre-actions: "+strings.Join(kinds, ", "))
	}
	return strings.Join(parts, "; ")
}
