package diagfmt

import (
	"fmt"
	"io"
)

// Options bundles the per-format settings for Write.
type Options struct {
	Pretty PrettyOpts
	JSON   JSONOpts
	// PathMode applies to the formats without their own options.
	PathMode PathMode
}

// Write renders r in format f.
func Write(w io.Writer, r *Report, f Format, opts Options) error {
	switch f {
	case FormatPretty:
		return Pretty(w, r, opts.Pretty)
	case FormatShort:
		return Short(w, r, opts.PathMode)
	case FormatJSON:
		return JSON(w, r, opts.JSON)
	case FormatTAP:
		return TAP(w, r, opts.PathMode)
	case FormatCheckstyle:
		return Checkstyle(w, r, opts.PathMode)
	case FormatJUnit:
		return JUnit(w, r, opts.PathMode)
	case FormatPMD:
		return PMD(w, r, opts.PathMode)
	}
	return fmt.Errorf("unsupported format %v", f)
}
