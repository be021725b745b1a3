// File: internal/extract/csv.go
package extract

import (
	"encoding/csv"
	"strings"
)

// RenderCSV renders records as CSV text: header row first, one data row per
// record, no index column.
func RenderCSV(header []string, records []Record) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Writes to a strings.Builder cannot fail.
	_ = w.Write(header)
	for _, r := range records {
		_ = w.Write(r.Row())
	}
	w.Flush()

	return sb.String()
}
