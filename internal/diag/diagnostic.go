package diag

import "fmt"

// Diagnostic is one classified finding. Line is 1-based; 0 means the
// finding belongs to the whole file.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Path     string
	Line     int
	Message  string
}

// Locator renders "path:line", or just the path for file-level findings.
func (d Diagnostic) Locator() string {
	if d.Line <= 0 {
		return d.Path
	}
	return fmt.Sprintf("%s:%d", d.Path, d.Line)
}

// Formatted renders the diagnostic the way it appears in plain output.
func (d Diagnostic) Formatted() string {
	return d.Locator() + " " + d.Message
}
