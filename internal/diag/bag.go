package diag

import "sort"

// Bag collects diagnostics up to a limit. A zero limit means unbounded;
// diagnostics past the limit are counted, not kept.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{items: make([]Diagnostic, 0, capHint), max: max}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Extend adds ds in order and returns how many were kept.
func (b *Bag) Extend(ds []Diagnostic) int {
	kept := 0
	for _, d := range ds {
		if b.Add(d) {
			kept++
		}
	}
	return kept
}

// Count returns the number of kept diagnostics at exactly sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped is the number of diagnostics refused by the limit.
func (b *Bag) Dropped() int { return b.dropped }

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders by path, line and severity (errors first). Within one line
// the emission order is kept.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Severity > dj.Severity
	})
}
