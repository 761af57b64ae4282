package analyzer

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var differ = diffmatchpatch.New()

// similarity returns a normalized match ratio in [0,1] between two strings:
// twice the number of matched runes over the combined length, derived from
// the minimal edit script between them.
func similarity(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}

	matched := 0
	for _, diff := range differ.DiffMain(a, b, false) {
		if diff.Type == diffmatchpatch.DiffEqual {
			matched += utf8.RuneCountInString(diff.Text)
		}
	}
	return 2 * float64(matched) / float64(total)
}
