package headers

import (
	"strings"
)

// Parse converts an array of header strings ("Key: Value") into a map.
// Entries without a colon or with an empty key are skipped.
func Parse(h []string) map[string]string {
	m := make(map[string]string)
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		m[key] = strings.TrimSpace(parts[1])
	}
	return m
}
