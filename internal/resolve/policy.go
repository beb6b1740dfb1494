package resolve

import (
	"fmt"
	"strings"
)

// RootedPolicy decides whether names written with a leading separator get
// the "qualified type names are discouraged" warning.
type RootedPolicy uint8

const (
	// RootedExempt never warns about rooted names.
	RootedExempt RootedPolicy = iota
	// RootedMultiSegment warns about rooted names with more than one
	// segment (`\a\B`), but not about `\B`.
	RootedMultiSegment
	// RootedAll warns about every rooted name.
	RootedAll
)

func (p RootedPolicy) String() string {
	switch p {
	case RootedExempt:
		return "exempt"
	case RootedMultiSegment:
		return "multi-segment"
	case RootedAll:
		return "all"
	}
	return "unknown"
}

// ParseRootedPolicy accepts the String forms.
func ParseRootedPolicy(s string) (RootedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exempt":
		return RootedExempt, nil
	case "multi-segment", "multisegment", "multi":
		return RootedMultiSegment, nil
	case "all":
		return RootedAll, nil
	}
	return RootedExempt, fmt.Errorf("unknown rooted policy %q (want exempt, multi-segment or all)", s)
}

// flags reports whether a name with n segments written rooted/relative is
// discouraged.
func (p RootedPolicy) flags(rooted bool, n int) bool {
	if !rooted {
		return n > 1
	}
	switch p {
	case RootedMultiSegment:
		return n > 1
	case RootedAll:
		return true
	}
	return false
}
