package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/page-harvest/harvest/internal/utils/url"
	"github.com/page-harvest/harvest/pkg/models"
)

// WriteMarkdown renders the report as a Markdown document: a plan header,
// an item table, and the warning and error lists.
func WriteMarkdown(report models.OutcomeReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Scrape results for %s\n\n", report.Plan.SeedURL))
	if report.Plan.Description != "" {
		sb.WriteString(report.Plan.Description + "\n\n")
	}

	headers := csvHeaders(report)
	if len(report.Items) > 0 && len(headers) > 0 {
		sb.WriteString("| " + strings.Join(headers, " | ") + " |\n")
		separators := make([]string, len(headers))
		for i := range separators {
			separators[i] = "---"
		}
		sb.WriteString("| " + strings.Join(separators, " | ") + " |\n")
		for _, item := range report.Items {
			row := make([]string, len(headers))
			for i, header := range headers {
				row[i] = escapeCell(item[header])
			}
			sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("_No items extracted._\n\n")
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, warning := range report.Warnings {
			sb.WriteString("- " + warning + "\n")
		}
		sb.WriteString("\n")
	}
	if len(report.Errors) > 0 {
		sb.WriteString("## Errors\n\n")
		for _, e := range report.Errors {
			sb.WriteString("- " + e + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// SaveMarkdown writes the Markdown report to filepath
func SaveMarkdown(report models.OutcomeReport, filepath string) error {
	return os.WriteFile(filepath, []byte(WriteMarkdown(report)), 0644)
}

func escapeCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", " ")
}

// SavePageSnapshot converts a fetched page's HTML to Markdown and writes it
// to filepath. Links are resolved against the page's final URL.
func SavePageSnapshot(page models.PageContent, filepath string) error {
	baseURL := page.FinalURL
	if baseURL == "" {
		baseURL = page.URL
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.Resolve(baseURL, href)
			title, hasTitle := selec.Attr("title")
			var titlePart string
			if hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", selec.Text(), resolved, titlePart)
			return &str
		},
	})

	cleaned, err := CleanHTML(page.HTML)
	if err != nil {
		return err
	}

	mdStr, err := converter.ConvertString(cleaned)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("<!-- %s -->\n\n", baseURL)
	return os.WriteFile(filepath, []byte(header+mdStr), 0644)
}
