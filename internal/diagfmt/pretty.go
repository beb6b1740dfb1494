package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bugfree/internal/diag"
	"bugfree/internal/fix"
)

type palette struct {
	err, warn, path, code, dim, add, del *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:  mk(color.FgRed, color.Bold),
		warn: mk(color.FgYellow, color.Bold),
		path: mk(color.Bold),
		code: mk(color.FgCyan),
		dim:  mk(color.Faint),
		add:  mk(color.FgGreen),
		del:  mk(color.FgRed),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	if s == diag.SevError {
		return p.err
	}
	return p.warn
}

// Pretty форматирует диагностики в человекочитаемый вид. Для каждой:
//
//	<path>:<line>: <severity>[<ID> <kind>]: <message>
//
// затем строка исходника (обрезанная до Width колонок), затем исправления.
func Pretty(w io.Writer, r *Report, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	pw := &errWriter{w: w}

	for i := range r.Files {
		f := &r.Files[i]
		path := displayPath(f.Path, opts.PathMode, r.BaseDir)
		if f.Err != nil {
			pw.printf("%s: %s %v\n", p.path.Sprint(path), p.err.Sprint("failed:"), f.Err)
			continue
		}
		for _, d := range f.Diagnostics {
			loc := path
			if d.Line > 0 {
				loc += ":" + strconv.Itoa(d.Line)
			}
			pw.printf("%s: %s%s: %s\n",
				p.path.Sprint(loc),
				p.severity(d.Severity).Sprint(strings.ToLower(d.Severity.String())),
				p.code.Sprintf("[%s %s]", d.Kind.ID(), d.Kind.Key()),
				d.Message)
			if opts.ShowSource && f.Source != nil && d.Line > 0 {
				if text := f.Source.Line(d.Line); strings.TrimSpace(text) != "" {
					pw.printf("%s %s\n", p.dim.Sprintf("%5d |", d.Line), clip(text, opts.Width))
				}
			}
		}
		if opts.ShowFixes {
			prettyFixes(pw, p, f, opts)
		}
	}

	if opts.Summary {
		pw.printf("%s\n", summaryLine(r.Totals()))
	}
	return pw.err
}

func prettyFixes(pw *errWriter, p palette, f *FileReport, opts PrettyOpts) {
	applied := make(map[fix.Fix]bool, len(f.Applied))
	for _, a := range f.Applied {
		applied[a] = true
	}
	for _, fx := range f.Fixes {
		mark := "fix"
		if applied[fx] {
			mark = "fixed"
		}
		pw.printf("  %s %s", p.code.Sprint(mark+":"), fx.String())
		if fx.Reason != "" {
			pw.printf(" %s", p.dim.Sprintf("(%s)", fx.Reason))
		}
		pw.printf("\n")
		if !opts.ShowPreview {
			continue
		}
		preview, err := buildFixPreview(f.Source, fx)
		if err != nil {
			continue
		}
		for _, line := range preview.before {
			pw.printf("    %s\n", p.del.Sprint("- "+clip(line, opts.Width)))
		}
		for _, line := range preview.after {
			pw.printf("    %s\n", p.add.Sprint("+ "+clip(line, opts.Width)))
		}
	}
}

// clip обрезает строку по ширине терминала с учётом широких рун.
func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func summaryLine(t Totals) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %s in %s", plural(t.Errors, "error"), plural(t.Warnings, "warning"), plural(t.Files, "file"))
	if t.Broken > 0 {
		fmt.Fprintf(&sb, ", %d not checked", t.Broken)
	}
	if t.Fixes > 0 {
		fmt.Fprintf(&sb, "; %s", plural(t.Fixes, "fix"))
		if t.Applied > 0 {
			fmt.Fprintf(&sb, " (%d applied)", t.Applied)
		}
	}
	return sb.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if strings.HasSuffix(word, "x") {
		return fmt.Sprintf("%d %ses", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// errWriter remembers the first write error so formatters can print
// without checking every call.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
