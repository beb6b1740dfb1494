package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"bugfree/internal/diag"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

// FixJSON представляет одно исправление для JSON
type FixJSON struct {
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Line        int      `json:"line"`
	Target      int      `json:"target,omitempty"`
	Text        string   `json:"text,omitempty"`
	Search      string   `json:"search,omitempty"`
	Replacement string   `json:"replacement,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Applied     bool     `json:"applied,omitempty"`
	BeforeLines []string `json:"before_lines,omitempty"`
	AfterLines  []string `json:"after_lines,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FileJSON carries per-file state that is not a diagnostic.
type FileJSON struct {
	File  string    `json:"file"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
	Fixes []FixJSON `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Files       []FileJSON       `json:"files"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
	// Truncated counts diagnostics left out by JSONOpts.Max.
	Truncated int `json:"truncated,omitempty"`
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(r *Report, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0),
		Files:       make([]FileJSON, 0, len(r.Files)),
	}
	kept := diag.NewBag(opts.Max)

	for i := range r.Files {
		f := &r.Files[i]
		path := displayPath(f.Path, opts.PathMode, r.BaseDir)

		fj := FileJSON{File: path, OK: !f.Failed()}
		if f.Err != nil {
			fj.Error = f.Err.Error()
		}
		if opts.IncludeFixes {
			fj.Fixes = fixesJSON(f, opts.IncludePreviews)
		}
		out.Files = append(out.Files, fj)

		for _, d := range f.Diagnostics {
			if !kept.Add(d) {
				continue
			}
			out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
				Severity: strings.ToLower(d.Severity.String()),
				Code:     d.Kind.ID(),
				Kind:     d.Kind.Key(),
				Message:  d.Message,
				Location: LocationJSON{File: path, Line: d.Line},
			})
		}
	}

	totals := r.Totals()
	out.Count = kept.Len()
	out.Truncated = kept.Dropped()
	out.Errors = totals.Errors
	out.Warnings = totals.Warnings
	return out
}

func fixesJSON(f *FileReport, previews bool) []FixJSON {
	if len(f.Fixes) == 0 {
		return nil
	}
	applied := make(map[int]bool, len(f.Applied))
	for i, fx := range f.Fixes {
		for _, a := range f.Applied {
			if a == fx {
				applied[i] = true
				break
			}
		}
	}

	out := make([]FixJSON, 0, len(f.Fixes))
	for i, fx := range f.Fixes {
		fj := FixJSON{
			Kind:        fx.Kind.String(),
			Title:       fx.String(),
			Line:        fx.Line,
			Target:      fx.Target,
			Text:        fx.Text,
			Search:      fx.Search,
			Replacement: fx.Replacement,
			Reason:      fx.Reason,
			Applied:     applied[i],
		}
		if previews {
			if preview, err := buildFixPreview(f.Source, fx); err == nil {
				fj.BeforeLines = preview.before
				fj.AfterLines = preview.after
			}
		}
		out = append(out, fj)
	}
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, r *Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	if opts.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(BuildDiagnosticsOutput(r, opts))
}

// severityOrder is the order findings are listed in grouped formats.
var severityOrder = []diag.Severity{diag.SevError, diag.SevWarning}
