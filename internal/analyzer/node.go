package analyzer

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// node is the single abstraction the extraction passes work against. It wraps
// either a whole document or one element, so the cluster path and the
// single-shot fallback share every per-field extractor unchanged.
type node struct {
	sel *goquery.Selection
}

func documentNode(doc *goquery.Document) node {
	return node{sel: doc.Selection}
}

func elementNode(sel *goquery.Selection) node {
	return node{sel: sel}
}

// text returns the node's visible text with runs of whitespace collapsed to
// single spaces.
func (n node) text() string {
	return collapseText(n.sel.Text())
}

// attr returns the named attribute on the node itself, empty for documents.
func (n node) attr(name string) string {
	value, _ := n.sel.Attr(name)
	return value
}

// selfAndDescendants yields the node followed by every descendant element in
// document order.
func (n node) selfAndDescendants() []*goquery.Selection {
	out := []*goquery.Selection{n.sel}
	n.sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// findTag returns all descendant elements with the given tag, in document
// order. The node itself is never included.
func (n node) findTag(tag string) []*goquery.Selection {
	var out []*goquery.Selection
	n.sel.Find(tag).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// selectAll runs a CSS selector against the node's descendants
func (n node) selectAll(selector string) []*goquery.Selection {
	var out []*goquery.Selection
	n.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// classList returns the element's classes as written, split on whitespace
func classList(sel *goquery.Selection) []string {
	raw, ok := sel.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(raw)
}

// signatureOf builds the layout identity used for cluster grouping: the tag
// name plus the sorted class list plus the role attribute.
func signatureOf(sel *goquery.Selection) string {
	classes := classList(sel)
	sorted := make([]string, len(classes))
	copy(sorted, classes)
	sort.Strings(sorted)

	role, _ := sel.Attr("role")
	return goquery.NodeName(sel) + "|" + strings.Join(sorted, " ") + "|" + role
}
