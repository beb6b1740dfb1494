package diagfmt

import (
	"io"
	"strings"
)

// Short prints one line per diagnostic, grep-friendly:
//
//	path:line: severity: message
func Short(w io.Writer, r *Report, mode PathMode) error {
	pw := &errWriter{w: w}
	for i := range r.Files {
		f := &r.Files[i]
		path := displayPath(f.Path, mode, r.BaseDir)
		if f.Err != nil {
			pw.printf("%s: failed: %v\n", path, f.Err)
			continue
		}
		for _, d := range f.Diagnostics {
			if d.Line > 0 {
				pw.printf("%s:%d: %s: %s\n", path, d.Line, strings.ToLower(d.Severity.String()), d.Message)
			} else {
				pw.printf("%s: %s: %s\n", path, strings.ToLower(d.Severity.String()), d.Message)
			}
		}
	}
	return pw.err
}
