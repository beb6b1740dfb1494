package diagfmt

import (
	"fmt"
	"path/filepath"
	"strings"

	"bugfree/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps the path the driver reported.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode accepts auto|absolute|relative|basename.
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return PathModeAuto, nil
	case "absolute", "abs":
		return PathModeAbsolute, nil
	case "relative", "rel":
		return PathModeRelative, nil
	case "basename", "base":
		return PathModeBasename, nil
	}
	return PathModeAuto, fmt.Errorf("unknown path mode %q", s)
}

// Format selects an output formatter.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
	FormatTAP
	FormatCheckstyle
	FormatJUnit
	FormatPMD
)

var formatNames = map[Format]string{
	FormatPretty:     "pretty",
	FormatShort:      "short",
	FormatJSON:       "json",
	FormatTAP:        "tap",
	FormatCheckstyle: "checkstyle",
	FormatJUnit:      "junit",
	FormatPMD:        "pmd",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FormatNames lists the accepted --format values in a stable order.
func FormatNames() []string {
	out := make([]string, 0, len(formatNames))
	for f := FormatPretty; f <= FormatPMD; f++ {
		out = append(out, f.String())
	}
	return out
}

// ParseFormat maps a --format value to a Format.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return FormatPretty, nil
	}
	for f, name := range formatNames {
		if name == key {
			return f, nil
		}
	}
	return FormatPretty, fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(FormatNames(), ", "))
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	Width    int // максимальная ширина строки исходника, 0 - не ограничено
	// ShowSource prints the offending source line under each diagnostic.
	ShowSource bool
	ShowFixes  bool
	// ShowPreview prints the before/after lines of every fix.
	ShowPreview bool
	// Summary appends the totals line.
	Summary bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода
	IncludeFixes bool
	// IncludePreviews adds before/after lines to every fix.
	IncludePreviews bool
	Indent          bool
}

// displayPath renders path in the requested mode. base is the directory
// relative paths are computed against.
func displayPath(path string, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := source.AbsolutePath(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if base != "" {
			if rel, err := source.RelativePath(path, base); err == nil {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}
