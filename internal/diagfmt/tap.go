package diagfmt

import (
	"io"
	"strings"
)

// TAP writes a TAP version 13 stream with one test point per file. A file
// with findings is "not ok" and its messages follow in a YAML-ish block.
func TAP(w io.Writer, r *Report, mode PathMode) error {
	pw := &errWriter{w: w}
	pw.printf("TAP version 13\n")
	pw.printf("1..%d\n", len(r.Files))

	for i := range r.Files {
		f := &r.Files[i]
		n := i + 1
		path := displayPath(f.Path, mode, r.BaseDir)
		if !f.Failed() {
			pw.printf("ok %d - %s\n", n, path)
			continue
		}
		pw.printf("not ok %d - %s\n", n, path)

		var messages []string
		if f.Err != nil {
			messages = append(messages, f.Err.Error())
		}
		// сначала ошибки, потом предупреждения
		for _, sev := range severityOrder {
			for _, d := range f.Diagnostics {
				if d.Severity == sev {
					messages = append(messages, d.Formatted())
				}
			}
		}
		body := strings.Join(messages, "\n")
		body = strings.ReplaceAll(body, "\n", "\n  ")
		pw.printf("  ---\n")
		pw.printf("  %s\n", body)
		pw.printf("  ...\n")
	}
	return pw.err
}
