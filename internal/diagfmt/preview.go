package diagfmt

import (
	"fmt"

	"bugfree/internal/fix"
	"bugfree/internal/source"
)

type fixPreview struct {
	before []string
	after  []string
}

// buildFixPreview renders the lines a fix touches, before and after it is
// applied on its own.
func buildFixPreview(file *source.File, f fix.Fix) (fixPreview, error) {
	if file == nil {
		return fixPreview{}, fmt.Errorf("no source for preview")
	}
	inRange := func(line int) bool { return line >= 1 && line <= file.LineCount() }

	switch f.Kind {
	case fix.KindReplace:
		if !inRange(f.Line) {
			return fixPreview{}, fmt.Errorf("line %d out of range", f.Line)
		}
		before := []string{file.Line(f.Line)}
		single := f
		single.Line = 1
		after, res := fix.ApplyLines(before, []fix.Fix{single})
		if len(res.Skipped) > 0 {
			return fixPreview{}, fmt.Errorf("line %d: %s", f.Line, res.Skipped[0].Reason)
		}
		return fixPreview{before: before, after: after}, nil
	case fix.KindSwap:
		if !inRange(f.Line) || !inRange(f.Target) {
			return fixPreview{}, fmt.Errorf("lines %d/%d out of range", f.Line, f.Target)
		}
		a, b := file.Line(f.Line), file.Line(f.Target)
		return fixPreview{before: []string{a, b}, after: []string{b, a}}, nil
	case fix.KindRemove:
		if !inRange(f.Line) {
			return fixPreview{}, fmt.Errorf("line %d out of range", f.Line)
		}
		return fixPreview{before: []string{file.Line(f.Line)}}, nil
	case fix.KindAdd:
		return fixPreview{after: []string{f.Text}}, nil
	}
	return fixPreview{}, fmt.Errorf("unknown fix kind %d", f.Kind)
}
