package diagfmt

import (
	"time"

	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/source"
)

// Report is what the formatters render: the checked files in run order.
type Report struct {
	Files []FileReport
	// BaseDir anchors PathModeRelative.
	BaseDir string
	// Time stamps formats that carry one (pmd). Zero omits it.
	Time time.Time
}

// FileReport is the outcome for one file.
type FileReport struct {
	// Path is the display path; diagnostics carry the same one.
	Path        string
	Diagnostics []diag.Diagnostic
	Fixes       []fix.Fix
	// Applied is set when fixes were written back.
	Applied []fix.Fix
	// Source is the loaded file, nil when loading failed.
	Source *source.File
	Err    error
}

// Failed reports whether the file has findings or could not be checked.
func (f *FileReport) Failed() bool {
	return f.Err != nil || len(f.Diagnostics) > 0
}

// Totals are the counters for summary lines.
type Totals struct {
	Files    int
	Failed   int
	Errors   int
	Warnings int
	Fixes    int
	Applied  int
	// Broken counts files that could not be checked at all.
	Broken int
}

// Totals counts r.
func (r *Report) Totals() Totals {
	t := Totals{Files: len(r.Files)}
	for i := range r.Files {
		f := &r.Files[i]
		if f.Failed() {
			t.Failed++
		}
		if f.Err != nil {
			t.Broken++
		}
		for _, d := range f.Diagnostics {
			switch d.Severity {
			case diag.SevError:
				t.Errors++
			case diag.SevWarning:
				t.Warnings++
			}
		}
		t.Fixes += len(f.Fixes)
		t.Applied += len(f.Applied)
	}
	return t
}

// Diagnostics flattens every file's diagnostics in report order.
func (r *Report) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Files {
		out = append(out, f.Diagnostics...)
	}
	return out
}
