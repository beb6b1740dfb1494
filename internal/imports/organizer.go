// Package imports computes the canonical order of import declarations and
// the line swaps that reach it.
package imports

import (
	"sort"

	"bugfree/internal/qname"
)

// Declaration is one import as it appears in the file.
type Declaration struct {
	Name  qname.Name
	Alias string
	Line  int
}

// EffectiveAlias returns the explicit alias or the last segment.
func (d Declaration) EffectiveAlias() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name.Last()
}

func (d Declaration) isDefaultAlias() bool {
	return d.EffectiveAlias() == d.Name.Last()
}

func (d Declaration) key() string {
	return d.Name.String() + " as " + d.EffectiveAlias()
}

// Compare orders two declarations. A name that ends at the current segment
// sorts before one that continues below it; segments compare
// case-insensitively. Equal names are ordered by alias: the default alias
// first, explicit aliases by case-sensitive text.
func Compare(a, b Declaration) int {
	as, bs := a.Name.Segments(), b.Name.Segments()
	n := min(len(as), len(bs))
	for i := 0; i < n; i++ {
		lastA := i == len(as)-1
		lastB := i == len(bs)-1
		if lastA && !lastB {
			return -1
		}
		if lastB && !lastA {
			return 1
		}
		if c := qname.CompareFold(as[i], bs[i]); c != 0 {
			return c
		}
	}

	if len(as) != len(bs) {
		// один из списков пуст
		if len(as) < len(bs) {
			return -1
		}
		return 1
	}

	defA, defB := a.isDefaultAlias(), b.isDefaultAlias()
	switch {
	case defA && !defB:
		return -1
	case defB && !defA:
		return 1
	case defA && defB:
		return 0
	}
	switch ea, eb := a.EffectiveAlias(), b.EffectiveAlias(); {
	case ea < eb:
		return -1
	case ea > eb:
		return 1
	}
	return 0
}

// Organizer holds the declared and canonical orders of one block.
type Organizer struct {
	declared  []Declaration
	canonical []Declaration
}

// Organize sorts a copy of decls into canonical order. The sort is stable.
func Organize(decls []Declaration) *Organizer {
	declared := append([]Declaration(nil), decls...)
	canonical := append([]Declaration(nil), decls...)
	sort.SliceStable(canonical, func(i, j int) bool {
		return Compare(canonical[i], canonical[j]) < 0
	})
	return &Organizer{declared: declared, canonical: canonical}
}

// Declared returns the declarations in file order.
func (o *Organizer) Declared() []Declaration {
	return append([]Declaration(nil), o.declared...)
}

// Canonical returns the declarations in canonical order.
func (o *Organizer) Canonical() []Declaration {
	return append([]Declaration(nil), o.canonical...)
}

// IsOrganized compares name and alias of both orders position by position.
func (o *Organizer) IsOrganized() bool {
	for i := range o.declared {
		if o.declared[i].key() != o.canonical[i].key() {
			return false
		}
	}
	return true
}

// Swap moves the line at From to To.
type Swap struct {
	From int
	To   int
}

// Plan is the outcome of the swap walk.
type Plan struct {
	// Swaps are in application order.
	Swaps []Swap
	// Movements maps every declaration line to the line it ends up on.
	Movements map[int]int
}

// Moved returns where line ends up, or line itself when it does not move.
func (p Plan) Moved(line int) int {
	if to, ok := p.Movements[line]; ok {
		return to
	}
	return line
}

// Plan walks the canonical order from the bottom up over a working map of
// line -> declaration line, swapping entries until every position holds
// its canonical declaration. Declarations must sit on distinct lines.
func (o *Organizer) Plan() Plan {
	current := make([]int, len(o.declared))
	for i, d := range o.declared {
		current[i] = d.Line
	}
	target := make([]int, len(o.canonical))
	for i, d := range o.canonical {
		target[i] = d.Line
	}

	// позиция -> исходная строка, которая сейчас на ней стоит
	working := make(map[int]int, len(current))
	// исходная строка -> текущая позиция
	where := make(map[int]int, len(current))
	for _, line := range current {
		working[line] = line
		where[line] = line
	}

	var swaps []Swap
	for i := len(target) - 1; i >= 0; i-- {
		pos := current[i]
		holder := where[target[i]]
		if pos == holder {
			continue
		}
		a, b := working[pos], working[holder]
		working[pos], working[holder] = b, a
		where[a], where[b] = holder, pos
		swaps = append(swaps, Swap{From: pos, To: holder})
	}

	movements := make(map[int]int, len(where))
	for orig, pos := range where {
		movements[orig] = pos
	}
	return Plan{Swaps: swaps, Movements: movements}
}
