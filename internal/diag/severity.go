package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevSuppress drops the diagnostic before it is materialized.
	SevSuppress Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevSuppress:
		return "SUPPRESS"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Key is the lower-case form stored in configuration files.
func (s Severity) Key() string {
	return strings.ToLower(s.String())
}

// ParseSeverity accepts error|warning|suppress in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "suppress", "off", "none":
		return SevSuppress, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevSuppress, fmt.Errorf("unknown severity %q (want error, warning or suppress)", s)
}
