package fix

import "fmt"

// Kind tags the Fix variant.
type Kind uint8

const (
	KindReplace Kind = iota + 1
	KindSwap
	KindRemove
	KindAdd
)

func (k Kind) String() string {
	switch k {
	case KindReplace:
		return "replace"
	case KindSwap:
		return "swap"
	case KindRemove:
		return "remove"
	case KindAdd:
		return "add"
	}
	return "unknown"
}

// Ранги вариантов. Больший ранг применяется раньше.
const (
	rankReplace = 100
	rankSwap    = 75
	rankRemove  = 50
	rankAdd     = 25
)

// Fix is a line-oriented patch. Which fields matter depends on Kind:
//
//	KindReplace: Line, Search, Replacement
//	KindSwap:    Line (source), Target (destination)
//	KindRemove:  Line
//	KindAdd:     Line, Text (inserted so that it becomes Line)
//
// Lines are 1-based.
type Fix struct {
	Kind        Kind
	Line        int
	Target      int
	Text        string
	Search      string
	Replacement string
	Reason      string
}

// Rank is constant per variant. Applying fixes in descending (Rank, Order)
// keeps every fix pointed at the physical line it was computed for.
func (f Fix) Rank() int {
	switch f.Kind {
	case KindReplace:
		return rankReplace
	case KindSwap:
		return rankSwap
	case KindRemove:
		return rankRemove
	case KindAdd:
		return rankAdd
	}
	return 0
}

// Order breaks ties within a rank. Insertions go top-down, everything else
// bottom-up.
func (f Fix) Order() int {
	if f.Kind == KindAdd {
		return -f.Line
	}
	return f.Line
}

func (f Fix) String() string {
	switch f.Kind {
	case KindReplace:
		return fmt.Sprintf("line %d: replace %q with %q", f.Line, f.Search, f.Replacement)
	case KindSwap:
		return fmt.Sprintf("swap lines %d and %d", f.Line, f.Target)
	case KindRemove:
		return fmt.Sprintf("remove line %d", f.Line)
	case KindAdd:
		return fmt.Sprintf("insert %q at line %d", f.Text, f.Line)
	}
	return "unknown fix"
}

// AddLine inserts text so that it becomes line `line`.
func AddLine(line int, text, reason string) Fix {
	return Fix{Kind: KindAdd, Line: line, Text: text, Reason: reason}
}

// RemoveLine drops line `line`.
func RemoveLine(line int, reason string) Fix {
	return Fix{Kind: KindRemove, Line: line, Reason: reason}
}

// ReplaceSubstring replaces every occurrence of search on line `line`.
func ReplaceSubstring(line int, search, replacement, reason string) Fix {
	return Fix{Kind: KindReplace, Line: line, Search: search, Replacement: replacement, Reason: reason}
}

// SwapLines exchanges the contents of two lines.
func SwapLines(lineA, lineB int, reason string) Fix {
	return Fix{Kind: KindSwap, Line: lineA, Target: lineB, Reason: reason}
}
