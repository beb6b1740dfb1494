// Package oracle answers "does this name exist" for the checker.
//
// Implementations are immutable after construction and safe for concurrent
// reads. They never mutate on query.
package oracle

import "bugfree/internal/qname"

// Oracle is the existence check consumed by the resolver.
type Oracle interface {
	// IsValid reports whether name denotes a known class, interface,
	// trait or namespace. The comparison is case-sensitive.
	IsValid(name qname.Name) bool
	// Suggest returns known names whose last segment is short, ordered.
	Suggest(short string) []qname.Name
}

// Hinter is implemented by oracles that can offer fuzzy "did you mean"
// candidates. Hints only ever end up in messages.
type Hinter interface {
	Similar(short string, limit int) []qname.Name
}

// Func adapts plain functions to Oracle, mostly for tests.
type Func struct {
	Valid    func(qname.Name) bool
	Suggests func(string) []qname.Name
}

func (f Func) IsValid(name qname.Name) bool {
	if f.Valid == nil {
		return false
	}
	return f.Valid(name)
}

func (f Func) Suggest(short string) []qname.Name {
	if f.Suggests == nil {
		return nil
	}
	return f.Suggests(short)
}
