package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/page-harvest/harvest/pkg/models"
)

// WriteJSON streams an indented JSON report
func WriteJSON(w io.Writer, report models.OutcomeReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(report)
}

// SaveJSON writes the report to filepath
func SaveJSON(report models.OutcomeReport, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, report)
}
