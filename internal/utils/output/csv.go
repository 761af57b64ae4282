package output

import (
	"encoding/csv"
	"io"
	"os"
	"sort"

	"github.com/page-harvest/harvest/pkg/models"
)

// WriteCSV renders the report's items as CSV. Columns follow the plan's
// field order; fields the analyzer discovered outside the plan are appended
// alphabetically.
func WriteCSV(w io.Writer, report models.OutcomeReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := csvHeaders(report)
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, item := range report.Items {
		row := make([]string, len(headers))
		for i, header := range headers {
			row[i] = item[header]
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the report's items to filepath
func SaveCSV(report models.OutcomeReport, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, report)
}

func csvHeaders(report models.OutcomeReport) []string {
	headers := append([]string{}, report.Plan.Fields...)
	seen := make(map[string]bool, len(headers))
	for _, header := range headers {
		seen[header] = true
	}

	var extras []string
	for _, item := range report.Items {
		for key := range item {
			if !seen[key] {
				seen[key] = true
				extras = append(extras, key)
			}
		}
	}
	sort.Strings(extras)
	return append(headers, extras...)
}
