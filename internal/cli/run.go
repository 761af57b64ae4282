package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/page-harvest/harvest/internal/planner"
	"github.com/page-harvest/harvest/internal/ui"
	"github.com/page-harvest/harvest/internal/utils/output"
	"github.com/page-harvest/harvest/pkg/models"
)

var (
	maxPages     int
	format       string
	outputPath   string
	dumpPagesDir string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Scrape the web from a natural language request",
	Long: `Run plans a scrape from a plain-English prompt, fetches the pages it
names (with browser rendering when available), and extracts the requested
fields from the repeating layout it detects.

The prompt must contain at least one URL. Field names, page counts, and
pre-extraction interactions (scrolling, waiting, clicking) are inferred from
the wording.`,
	Example: `  # Scrape a single listing page
  harvest run "Get the title and price from https://example.com/deals"

  # Follow detected pagination across the first three pages
  harvest run "Collect name, rating and url from https://example.com/shops?page=1, first 3 pages"

  # Force plain HTTP fetching and save CSV
  harvest run "Get titles from https://example.com/news" --no-browser -f csv -o news.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&maxPages, "max-pages", "n", 0, "Override the number of pages to scrape")
	runCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, csv, or markdown")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "File path to save output (stdout when omitted)")
	runCmd.Flags().StringVar(&dumpPagesDir, "dump-pages", "", "Directory to save Markdown snapshots of each fetched page")
}

func runRun(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	if appCtx == nil {
		return fmt.Errorf("application is not initialized")
	}

	if !cmd.Flags().Changed("format") && outputPath != "" {
		format = inferFormat(outputPath)
	}
	switch format {
	case "json", "csv", "markdown":
	default:
		return fmt.Errorf("invalid format: %s (must be json, csv, or markdown)", format)
	}

	prompt := args[0]

	// Progress display only makes sense on a terminal run that isn't
	// already streaming structured output to stdout
	quiet, _ := cmd.Flags().GetBool("quiet")
	showProgress := !quiet && outputPath != ""
	var bar *progressbar.ProgressBar
	if showProgress {
		appCtx.Collector.OnPageDone = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Fetching pages"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}
	}

	var dumpedPages []models.PageContent
	if dumpPagesDir != "" {
		if err := os.MkdirAll(dumpPagesDir, 0755); err != nil {
			return fmt.Errorf("failed to create dump directory: %w", err)
		}
	}

	outcome, err := appCtx.Engine.Run(cmd.Context(), prompt, maxPages)
	if err != nil {
		if planner.IsInvalidRequest(err) {
			return fmt.Errorf("%s", err.Error())
		}
		return fmt.Errorf("scrape failed: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if dumpPagesDir != "" {
		dumpedPages = appCtx.Collector.LastPages()
		for i, page := range dumpedPages {
			if !page.Success() {
				continue
			}
			name := fmt.Sprintf("page-%02d.md", i+1)
			if err := output.SavePageSnapshot(page, filepath.Join(dumpPagesDir, name)); err != nil {
				log.Warn().Str("url", page.URL).Err(err).Msg("Failed to save page snapshot")
			}
		}
	}

	report := outcome.Report()

	if outputPath != "" {
		if err := saveReport(report, outputPath, format); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %d items saved to %s\n", ui.Success("✓"), len(report.Items), outputPath)
	} else {
		if err := printReport(report, format); err != nil {
			return err
		}
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(os.Stderr, "%s %s\n", ui.Warn("!"), warning)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "%s %s\n", ui.Error("✗"), e)
	}

	return nil
}

func saveReport(report models.OutcomeReport, path, format string) error {
	switch format {
	case "csv":
		return output.SaveCSV(report, path)
	case "markdown":
		return output.SaveMarkdown(report, path)
	default:
		return output.SaveJSON(report, path)
	}
}

func printReport(report models.OutcomeReport, format string) error {
	switch format {
	case "csv":
		return output.WriteCSV(os.Stdout, report)
	case "markdown":
		_, err := fmt.Fprint(os.Stdout, output.WriteMarkdown(report))
		return err
	default:
		return output.WriteJSON(os.Stdout, report)
	}
}

// inferFormat picks an output format from a file extension when the user
// gave a path but no explicit format flag.
func inferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".md", ".markdown":
		return "markdown"
	default:
		return "json"
	}
}
