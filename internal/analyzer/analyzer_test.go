package analyzer

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/page-harvest/harvest/internal/fields"
	"github.com/page-harvest/harvest/pkg/models"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse test HTML: %v", err)
	}
	return doc
}

func planWith(names ...string) *models.ScrapePlan {
	lib := fields.DefaultLibrary()
	return &models.ScrapePlan{
		SeedURL: "https://shop.example.com/list",
		Fields:  lib.Resolve(names),
	}
}

func TestExtractItems_RepeatingCluster(t *testing.T) {
	html := `<html><body><ul>
		<li class="product">
			<span class="title">Alpha Widget</span>
			<span class="price">$19.99</span>
			<a class="item-url" href="/p/alpha">View</a>
		</li>
		<li class="product">
			<span class="title">Beta Widget</span>
			<span class="price">$24.50</span>
			<a class="item-url" href="/p/beta">View</a>
		</li>
	</ul></body></html>`

	items, warnings := New().ExtractItems(html, planWith("title", "price", "url"), "https://shop.example.com/list")

	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d: %v", len(items), items)
	}
	if items[0]["title"] != "Alpha Widget" {
		t.Errorf("Expected title 'Alpha Widget', got %q", items[0]["title"])
	}
	if items[0]["price"] != "$19.99" {
		t.Errorf("Expected price '$19.99', got %q", items[0]["price"])
	}
	if items[0]["url"] != "https://shop.example.com/p/alpha" {
		t.Errorf("Expected resolved absolute URL, got %q", items[0]["url"])
	}
	if items[1]["title"] != "Beta Widget" {
		t.Errorf("Expected title 'Beta Widget', got %q", items[1]["title"])
	}
}

func TestExtractItems_NoRepeatingLayout(t *testing.T) {
	html := `<html><body>
		<div class="post">
			<h1 class="title">Solo entry</h1>
		</div>
	</body></html>`

	items, warnings := New().ExtractItems(html, planWith("title"), "https://example.com")

	if len(items) != 1 {
		t.Fatalf("Expected a single whole-page item, got %d", len(items))
	}
	if items[0]["title"] != "Solo entry" {
		t.Errorf("Expected title 'Solo entry', got %q", items[0]["title"])
	}
	if len(warnings) != 1 || warnings[0] != "No repeating layout detected; falling back to whole-page extraction." {
		t.Errorf("Expected the whole-page fallback warning, got %v", warnings)
	}
}

func TestExtractItems_ClustersWithoutData(t *testing.T) {
	html := `<html><body>
		<h1 class="title">Page heading</h1>
		<ul>
			<li class="row"></li>
			<li class="row"></li>
		</ul>
	</body></html>`

	items, warnings := New().ExtractItems(html, planWith("title"), "https://example.com")

	if len(items) != 1 {
		t.Fatalf("Expected the single-shot fallback to produce one item, got %d", len(items))
	}
	if items[0]["title"] != "Page heading" {
		t.Errorf("Expected title 'Page heading', got %q", items[0]["title"])
	}
	if len(warnings) != 1 || warnings[0] != "Structured clusters did not yield data; using single-shot extraction." {
		t.Errorf("Expected the cluster fallback warning, got %v", warnings)
	}
}

func TestExtractItems_FuzzyNumericAndDate(t *testing.T) {
	html := `<html><body><ul>
		<li class="entry">
			<span>Price: $42</span>
			<span>Posted 12 March 2024</span>
		</li>
		<li class="entry">
			<span>Price: $7.50</span>
			<span>Posted 01 April 2024</span>
		</li>
	</ul></body></html>`

	items, _ := New().ExtractItems(html, planWith("price", "date"), "https://example.com")

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0]["price"] != "$42" {
		t.Errorf("Expected price '$42', got %q", items[0]["price"])
	}
	if items[0]["date"] != "12 March 2024" {
		t.Errorf("Expected date '12 March 2024', got %q", items[0]["date"])
	}
	if items[1]["price"] != "$7.50" {
		t.Errorf("Expected price '$7.50', got %q", items[1]["price"])
	}
}

func TestExtractItems_ImageResolution(t *testing.T) {
	html := `<html><body><ul>
		<li class="card"><img src="/img/a.jpg" alt="product photo"><p class="name">Alpha</p></li>
		<li class="card"><img src="/img/b.jpg" alt="product photo"><p class="name">Beta</p></li>
	</ul></body></html>`

	items, _ := New().ExtractItems(html, planWith("name", "image"), "https://example.com/catalog")

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0]["image"] != "https://example.com/img/a.jpg" {
		t.Errorf("Expected resolved image URL, got %q", items[0]["image"])
	}
	if items[0]["name"] != "Alpha" {
		t.Errorf("Expected name 'Alpha', got %q", items[0]["name"])
	}
}

func TestExtractItems_UnparsableHTML(t *testing.T) {
	// goquery tolerates malformed markup, so even garbage should go through
	// the whole-page path rather than erroring
	items, warnings := New().ExtractItems("<<<not html>>>", planWith("title"), "https://example.com")

	if len(items) != 0 {
		t.Errorf("Expected no items from garbage input, got %v", items)
	}
	if len(warnings) == 0 {
		t.Error("Expected at least one degradation warning")
	}
}

func TestFindRepeatingGroups_ExcludesBareContainers(t *testing.T) {
	html := `<html><body>
		<div><p>one</p></div>
		<div><p>two</p></div>
		<li>first</li>
		<li>second</li>
	</body></html>`

	doc := mustParse(t, html)
	groups := findRepeatingGroups(doc)

	if len(groups) != 1 {
		t.Fatalf("Expected only the li cluster, got %d groups", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("Expected 2 cluster members, got %d", len(groups[0]))
	}
}

func TestFindRepeatingGroups_LargestFirst(t *testing.T) {
	html := `<html><body>
		<div class="a">x</div><div class="a">x</div>
		<div class="b">x</div><div class="b">x</div><div class="b">x</div>
	</body></html>`

	doc := mustParse(t, html)
	groups := findRepeatingGroups(doc)

	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("Expected the larger cluster first, got sizes %d, %d", len(groups[0]), len(groups[1]))
	}
}
