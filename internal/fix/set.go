package fix

import "sort"

// Set collects the fixes synthesized for one file.
type Set struct {
	items []Fix
}

func NewSet() *Set {
	return &Set{}
}

func (s *Set) Add(f Fix) {
	s.items = append(s.items, f)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Fixes returns fixes in insertion order.
func (s *Set) Fixes() []Fix {
	if s == nil {
		return nil
	}
	return append([]Fix(nil), s.items...)
}

// Sorted returns a copy ordered by descending (Rank, Order). Equal keys keep
// insertion order.
func (s *Set) Sorted() []Fix {
	out := s.Fixes()
	Sort(out)
	return out
}

// Sort orders fixes in place for application.
func Sort(fixes []Fix) {
	sort.SliceStable(fixes, func(i, j int) bool {
		ri, rj := fixes[i].Rank(), fixes[j].Rank()
		if ri != rj {
			return ri > rj
		}
		return fixes[i].Order() > fixes[j].Order()
	})
}
