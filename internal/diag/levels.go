package diag

import (
	"fmt"
	"maps"
)

// Levels maps every kind to the severity it is emitted at.
type Levels map[Kind]Severity

// DefaultLevels returns a fresh copy of the built-in emit levels.
func DefaultLevels() Levels {
	return Levels{
		UnableToResolveType:           SevError,
		UnableToResolveTypeInComment:  SevWarning,
		UnableToResolveUse:            SevError,
		UseOfUnqualifiedType:          SevWarning,
		UseOfUnqualifiedTypeInComment: SevWarning,
		DuplicateAlias:                SevError,
		MalformedUse:                  SevError,
		MultiStatementUse:             SevWarning,
		MissingNamespace:              SevError,
		UnusedUse:                     SevWarning,
		DisorganizedUses:              SevWarning,
		CommonTypos:                   SevWarning,
		ParseError:                    SevError,
	}
}

// Lookup returns the severity configured for k. A kind missing from the
// table is a programming error and panics.
func (l Levels) Lookup(k Kind) Severity {
	sev, ok := l[k]
	if !ok {
		panic(fmt.Sprintf("diag: no emit level for kind %q", k.Key()))
	}
	return sev
}

// With returns a copy of l with k set to sev.
func (l Levels) With(k Kind, sev Severity) Levels {
	out := maps.Clone(l)
	if out == nil {
		out = Levels{}
	}
	out[k] = sev
	return out
}
