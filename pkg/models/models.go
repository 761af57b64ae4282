// Package models contains the plan model shared by the extraction pipeline:
// field specifications, interaction steps, pagination rules, scrape plans,
// fetched page contents, and the final outcome. Values are built once by
// their owning component and treated as read-only afterwards.
package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ValueType classifies what kind of value a field extracts
type ValueType string

const (
	TypeText    ValueType = "text"
	TypeNumeric ValueType = "numeric"
	TypeDate    ValueType = "date"
	TypeLink    ValueType = "link"
	TypeImage   ValueType = "image"
)

// FieldSpec describes a single logical field to extract from a page
type FieldSpec struct {
	Name                 string    `json:"name"`
	Synonyms             []string  `json:"synonyms"`
	ValueType            ValueType `json:"value_type"`
	AttributePreferences []string  `json:"attribute_preferences,omitempty"`
	AllowPartial         bool      `json:"allow_partial,omitempty"`
}

// NewFieldSpec builds a FieldSpec with case-folded, sorted, deduplicated
// synonyms and deduplicated attribute preferences (first-seen order)
func NewFieldSpec(name string, synonyms []string, valueType ValueType, attrPrefs []string, allowPartial bool) FieldSpec {
	seen := make(map[string]bool, len(synonyms))
	normalized := make([]string, 0, len(synonyms))
	for _, syn := range synonyms {
		folded := strings.ToLower(syn)
		if !seen[folded] {
			seen[folded] = true
			normalized = append(normalized, folded)
		}
	}
	sort.Strings(normalized)

	attrSeen := make(map[string]bool, len(attrPrefs))
	attrs := make([]string, 0, len(attrPrefs))
	for _, attr := range attrPrefs {
		if !attrSeen[attr] {
			attrSeen[attr] = true
			attrs = append(attrs, attr)
		}
	}

	return FieldSpec{
		Name:                 name,
		Synonyms:             normalized,
		ValueType:            valueType,
		AttributePreferences: attrs,
		AllowPartial:         allowPartial,
	}
}

// Clone returns a copy of the field specification, optionally renamed.
// Pass an empty name to keep the original one.
func (f FieldSpec) Clone(name string) FieldSpec {
	clone := f
	if name != "" {
		clone.Name = name
	}
	clone.Synonyms = append([]string(nil), f.Synonyms...)
	clone.AttributePreferences = append([]string(nil), f.AttributePreferences...)
	return clone
}

// InteractionStep describes one browser automation action executed before
// page content is read. Unknown kinds are accepted and skipped at runtime.
type InteractionStep struct {
	Kind     string `json:"kind"`
	Selector string `json:"selector,omitempty"`
	Count    int    `json:"count,omitempty"`
	WaitMS   int    `json:"wait_ms,omitempty"`
	Value    string `json:"value,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Interaction kinds understood by the collector
const (
	StepScroll          = "scroll"
	StepWait            = "wait"
	StepWaitForSelector = "wait_for_selector"
	StepClick           = "click"
	StepType            = "type"
)

// PaginationPlan represents a simple pagination strategy. Query mode rewrites
// a query-string parameter; path mode substitutes {page} in a path template.
type PaginationPlan struct {
	Mode      string `json:"mode"`
	Parameter string `json:"parameter,omitempty"`
	Template  string `json:"template,omitempty"`
	Start     int    `json:"start"`
	Step      int    `json:"step"`
}

// Pagination modes
const (
	PaginationQuery = "query"
	PaginationPath  = "path"
)

// GenerateURLs produces the ordered paginated URLs up to limit. It is a pure
// function of its inputs; identical inputs yield identical lists.
func (p PaginationPlan) GenerateURLs(baseURL string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	step := p.Step
	if step == 0 {
		step = 1
	}

	urls := make([]string, 0, limit)
	for offset := 0; offset < limit; offset++ {
		pageNumber := p.Start + offset*step
		switch {
		case p.Mode == PaginationQuery && p.Parameter != "":
			urls = append(urls, buildQueryURL(baseURL, p.Parameter, pageNumber))
		case p.Mode == PaginationPath && p.Template != "":
			urls = append(urls, buildPathURL(baseURL, p.Template, pageNumber))
		default:
			return urls
		}
	}
	return urls
}

func buildQueryURL(baseURL, parameter string, pageNumber int) string {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	query := parsed.Query()
	query.Set(parameter, strconv.Itoa(pageNumber))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func buildPathURL(baseURL, template string, pageNumber int) string {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	parsed.Path = strings.ReplaceAll(template, "{page}", strconv.Itoa(pageNumber))
	return parsed.String()
}

// ScrapePlan contains the strategy the engine will use for one extraction run.
// Plans are constructed only by the planner; SeedURL is always a non-empty
// absolute URL by the time a plan exists.
type ScrapePlan struct {
	SeedURL            string            `json:"seed_url"`
	Fields             []FieldSpec       `json:"fields"`
	Description        string            `json:"description"`
	ExtraURLs          []string          `json:"extra_urls,omitempty"`
	Interactions       []InteractionStep `json:"interactions,omitempty"`
	Pagination         *PaginationPlan   `json:"pagination,omitempty"`
	RequestedPageCount int               `json:"requested_page_count,omitempty"`
	Notes              []string          `json:"notes,omitempty"`
}

// FieldNames returns the planned field names in extraction order
func (p *ScrapePlan) FieldNames() []string {
	names := make([]string, len(p.Fields))
	for i, field := range p.Fields {
		names[i] = field.Name
	}
	return names
}

// ExpandURLs resolves the plan into the concrete, ordered URL list to visit.
// Pagination expands the seed first, then extra URLs fill the remaining
// budget. Duplicates are removed preserving first-seen order. The result is
// never empty; the seed URL is the floor.
func (p *ScrapePlan) ExpandURLs(limit int) []string {
	if limit < 1 {
		limit = 1
	}

	var urls []string
	if p.Pagination != nil {
		paginated := p.Pagination.GenerateURLs(p.SeedURL, limit)
		if len(paginated) > limit {
			paginated = paginated[:limit]
		}
		urls = append(urls, paginated...)
	} else {
		urls = append(urls, p.SeedURL)
	}

	for _, extra := range p.ExtraURLs {
		if len(urls) >= limit {
			break
		}
		urls = append(urls, extra)
	}

	seen := make(map[string]bool, len(urls))
	ordered := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			ordered = append(ordered, u)
		}
		if len(ordered) >= limit {
			break
		}
	}

	if len(ordered) == 0 {
		return []string{p.SeedURL}
	}
	return ordered
}

// PlanSummary is the observability view of a plan exposed at the boundary
type PlanSummary struct {
	SeedURL            string            `json:"seed_url"`
	Fields             []string          `json:"fields"`
	Description        string            `json:"description"`
	ExtraURLs          []string          `json:"extra_urls"`
	Interactions       []InteractionStep `json:"interactions"`
	Pagination         *PaginationPlan   `json:"pagination"`
	RequestedPageCount int               `json:"requested_page_count,omitempty"`
	Notes              []string          `json:"notes"`
}

// Summary builds the serializable view of the plan
func (p *ScrapePlan) Summary() PlanSummary {
	return PlanSummary{
		SeedURL:            p.SeedURL,
		Fields:             p.FieldNames(),
		Description:        p.Description,
		ExtraURLs:          append([]string{}, p.ExtraURLs...),
		Interactions:       append([]InteractionStep{}, p.Interactions...),
		Pagination:         p.Pagination,
		RequestedPageCount: p.RequestedPageCount,
		Notes:              append([]string{}, p.Notes...),
	}
}
