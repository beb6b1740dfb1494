// Package qname models namespace-qualified names such as `\Foo\Bar\Baz`.
//
// A Name is an ordered, non-empty list of segments plus a flag telling
// whether the name was written with an explicit root (`\Foo`) or relative to
// the current namespace (`Foo\Bar`). Canonicalization drops the empty
// segments that repeated separators produce, so `Foo\\Bar` and `Foo\Bar`
// are the same name.
//
// Ordering helpers compare segments case-insensitively, existence checks
// elsewhere stay case-sensitive.
package qname

import (
	"strings"

	"golang.org/x/text/cases"
)

// Separator splits namespace segments.
const Separator = `\`

// Name is an immutable qualified name.
type Name struct {
	segments []string
	rooted   bool
}

// Parse builds a Name from its written form. A leading separator marks the
// name as rooted. Empty segments are dropped.
func Parse(text string) Name {
	text = strings.TrimSpace(text)
	rooted := strings.HasPrefix(text, Separator)
	return New(rooted, strings.Split(text, Separator)...)
}

// New builds a Name from raw segments, dropping empty ones.
func New(rooted bool, segments ...string) Name {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		out = append(out, seg)
	}
	return Name{segments: out, rooted: rooted}
}

// IsZero reports whether the name has no segments.
func (n Name) IsZero() bool { return len(n.segments) == 0 }

// Len returns the number of segments.
func (n Name) Len() int { return len(n.segments) }

// Rooted reports whether the name was written fully qualified.
func (n Name) Rooted() bool { return n.rooted }

// Segments returns a copy of the segments.
func (n Name) Segments() []string {
	return append([]string(nil), n.segments...)
}

// Segment returns the i-th segment or "" when out of range.
func (n Name) Segment(i int) string {
	if i < 0 || i >= len(n.segments) {
		return ""
	}
	return n.segments[i]
}

// First returns the leading segment.
func (n Name) First() string { return n.Segment(0) }

// Last returns the trailing segment, the default alias of an import.
func (n Name) Last() string { return n.Segment(len(n.segments) - 1) }

// Tail returns every segment after the first.
func (n Name) Tail() []string {
	if len(n.segments) < 2 {
		return nil
	}
	return append([]string(nil), n.segments[1:]...)
}

// Parent drops the last segment.
func (n Name) Parent() Name {
	if len(n.segments) == 0 {
		return n
	}
	return Name{segments: append([]string(nil), n.segments[:len(n.segments)-1]...), rooted: n.rooted}
}

// Join appends raw segments, keeping the rooted flag of n.
func (n Name) Join(segments ...string) Name {
	all := make([]string, 0, len(n.segments)+len(segments))
	all = append(all, n.segments...)
	all = append(all, segments...)
	return New(n.rooted, all...)
}

// AsRooted returns a copy marked as fully qualified.
func (n Name) AsRooted() Name {
	return Name{segments: n.segments, rooted: true}
}

// String renders the canonical form without the leading separator.
func (n Name) String() string {
	return strings.Join(n.segments, Separator)
}

// Text renders the name the way it would be written, including the leading
// separator for rooted names.
func (n Name) Text() string {
	if n.rooted {
		return Separator + n.String()
	}
	return n.String()
}

// Equal compares segments exactly; the rooted flag is ignored because both
// sides are expected to be canonical at this point.
func (n Name) Equal(other Name) bool {
	if len(n.segments) != len(other.segments) {
		return false
	}
	for i := range n.segments {
		if n.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// EqualFold compares segments case-insensitively.
func (n Name) EqualFold(other Name) bool {
	if len(n.segments) != len(other.segments) {
		return false
	}
	for i := range n.segments {
		if CompareFold(n.segments[i], other.segments[i]) != 0 {
			return false
		}
	}
	return true
}

// InNamespace reports whether n is declared directly inside ns.
func (n Name) InNamespace(ns Name) bool {
	if len(n.segments) != len(ns.segments)+1 {
		return false
	}
	for i, seg := range ns.segments {
		if n.segments[i] != seg {
			return false
		}
	}
	return true
}

// Fold returns the case-folded form used for ordering and alias keys.
func Fold(s string) string {
	// Caser хранит состояние, поэтому создаём новый на каждый вызов.
	return cases.Fold().String(s)
}

// CompareFold compares two segments case-insensitively, like strcasecmp.
func CompareFold(a, b string) int {
	return strings.Compare(Fold(a), Fold(b))
}
