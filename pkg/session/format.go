// pkg/session/format.go
//
// Result formatting precision (SPEC_FULL.md §4.4): header row, then one
// line per row, values joined by a single tab; null renders as the
// literal text NULL; strings render unquoted. DDL statements produce no
// output; other non-SELECT statements report the affected row count when
// it is non-zero, and produce no output when no row was affected.
package session

import (
	"strconv"
	"strings"

	"tur/pkg/sql/executor"
)

// FormatResults renders a batch's results, one line group per statement
// that produced output, joined by a single newline (no blank line).
func FormatResults(results []*executor.Result) string {
	var parts []string
	for _, res := range results {
		if s := FormatResult(res); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// FormatResult renders one statement's result.
func FormatResult(res *executor.Result) string {
	if res == nil {
		return ""
	}
	if res.Columns == nil {
		if res.RowsAffected > 0 {
			return strconv.Itoa(res.RowsAffected) + " rows affected"
		}
		return ""
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		sb.WriteByte('\n')
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		sb.WriteString(strings.Join(cells, "\t"))
	}
	return sb.String()
}
