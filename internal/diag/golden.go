package diag

import (
	"sort"
	"strconv"
	"strings"
)

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and test assertions:
//
//	path:line SEVERITY kind: message
//
// Entries are sorted by path and line; emission order is kept within a line.
func FormatGoldenDiagnostics(diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	sorted := append([]Diagnostic(nil), diags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Line < sorted[j].Line
	})

	var sb strings.Builder
	for i, d := range sorted {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.Path)
		if d.Line > 0 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(d.Line))
		}
		sb.WriteByte(' ')
		sb.WriteString(d.Severity.String())
		sb.WriteByte(' ')
		sb.WriteString(d.Kind.Key())
		sb.WriteString(": ")
		sb.WriteString(d.Message)
	}
	return sb.String()
}
