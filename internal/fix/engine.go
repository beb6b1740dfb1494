package fix

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// SkippedFix captures a fix that could not be applied and why.
type SkippedFix struct {
	Fix    Fix
	Reason string
}

// ApplyResult aggregates applied and skipped fixes for one file.
type ApplyResult struct {
	Path    string
	Applied []Fix
	Skipped []SkippedFix
}

// Changed reports whether at least one fix was applied.
func (r *ApplyResult) Changed() bool {
	return r != nil && len(r.Applied) > 0
}

// ApplyLines applies fixes to a copy of lines. Fixes are sorted into
// application order first; a fix whose line is out of range, or whose
// search text is missing, is skipped without touching the buffer.
func ApplyLines(lines []string, fixes []Fix) ([]string, *ApplyResult) {
	working := append([]string(nil), lines...)
	result := &ApplyResult{
		Applied: make([]Fix, 0, len(fixes)),
		Skipped: make([]SkippedFix, 0),
	}

	ordered := append([]Fix(nil), fixes...)
	Sort(ordered)

	for _, f := range ordered {
		var reason string
		working, reason = applyOne(working, f)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{Fix: f, Reason: reason})
			continue
		}
		result.Applied = append(result.Applied, f)
	}
	return working, result
}

func applyOne(lines []string, f Fix) ([]string, string) {
	inRange := func(line int) bool { return line >= 1 && line <= len(lines) }

	switch f.Kind {
	case KindReplace:
		if !inRange(f.Line) {
			return lines, "line out of range"
		}
		if f.Search == "" || !strings.Contains(lines[f.Line-1], f.Search) {
			return lines, "search text not found on line"
		}
		replaced, n := replaceWhole(lines[f.Line-1], f.Search, f.Replacement)
		if n == 0 {
			return lines, "search text only found inside a longer name"
		}
		lines[f.Line-1] = replaced
	case KindSwap:
		if !inRange(f.Line) || !inRange(f.Target) {
			return lines, "line out of range"
		}
		lines[f.Line-1], lines[f.Target-1] = lines[f.Target-1], lines[f.Line-1]
	case KindRemove:
		if !inRange(f.Line) {
			return lines, "line out of range"
		}
		lines = append(lines[:f.Line-1], lines[f.Line:]...)
	case KindAdd:
		// вставка сразу после последней строки тоже допустима
		if f.Line < 1 || f.Line > len(lines)+1 {
			return lines, "line out of range"
		}
		lines = append(lines, "")
		copy(lines[f.Line:], lines[f.Line-1:])
		lines[f.Line-1] = f.Text
	default:
		return lines, fmt.Sprintf("unknown fix kind %d", f.Kind)
	}
	return lines, ""
}

// replaceWhole replaces every occurrence of search that is not glued to
// another name character on either side, so `x\Thing` never matches inside
// `x\ThingTwo` or `ax\Thing`. Edges of search that are not name characters
// themselves (` `, `@`, `|`) need no boundary.
func replaceWhole(s, search, repl string) (string, int) {
	checkHead := isNameByte(search[0])
	checkTail := isNameByte(search[len(search)-1])

	var sb strings.Builder
	n, from := 0, 0
	for from <= len(s)-len(search) {
		i := strings.Index(s[from:], search)
		if i < 0 {
			break
		}
		i += from
		end := i + len(search)
		if (checkHead && i > 0 && isNameByte(s[i-1])) || (checkTail && end < len(s) && isNameByte(s[end])) {
			sb.WriteString(s[from : i+1])
			from = i + 1
			continue
		}
		sb.WriteString(s[from:i])
		sb.WriteString(repl)
		from = end
		n++
	}
	sb.WriteString(s[from:])
	return sb.String(), n
}

// isNameByte reports bytes that may continue a PHP name: identifier bytes
// (UTF-8 included) and the namespace separator.
func isNameByte(b byte) bool {
	return b == '_' || b == '\\' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// SplitLines splits content on \n, \r\n or \r and reports the dominant
// line ending so the file can be written back the same way.
func SplitLines(content string) ([]string, string) {
	eol := "\n"
	if strings.Contains(content, "\r\n") {
		eol = "\r\n"
	} else if strings.Contains(content, "\r") && !strings.Contains(content, "\n") {
		eol = "\r"
	}
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n"), eol
}

// ApplyFile rewrites path in place. The file mode is preserved. ErrNoFixes
// is returned (together with the result) when nothing could be applied.
func ApplyFile(path string, fixes []Fix) (*ApplyResult, error) {
	if len(fixes) == 0 {
		return &ApplyResult{Path: path}, ErrNoFixes
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	lines, eol := SplitLines(string(content))
	updated, result := ApplyLines(lines, fixes)
	result.Path = path
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, []byte(strings.Join(updated, eol)), mode); err != nil {
		return result, fmt.Errorf("write %s: %w", path, err)
	}
	return result, nil
}
