package oracle

import "bugfree/internal/qname"

// Chain asks each oracle in turn. A name is valid when any member accepts
// it; suggestions are merged in member order without duplicates.
type Chain []Oracle

func (c Chain) IsValid(name qname.Name) bool {
	for _, o := range c {
		if o != nil && o.IsValid(name) {
			return true
		}
	}
	return false
}

func (c Chain) Suggest(short string) []qname.Name {
	var out []qname.Name
	seen := make(map[string]struct{})
	for _, o := range c {
		if o == nil {
			continue
		}
		for _, n := range o.Suggest(short) {
			if _, dup := seen[n.String()]; dup {
				continue
			}
			seen[n.String()] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// Similar collects hints from members that implement Hinter.
func (c Chain) Similar(short string, limit int) []qname.Name {
	var out []qname.Name
	seen := make(map[string]struct{})
	for _, o := range c {
		h, ok := o.(Hinter)
		if !ok {
			continue
		}
		for _, n := range h.Similar(short, limit) {
			if len(out) == limit {
				return out
			}
			if _, dup := seen[n.String()]; dup {
				continue
			}
			seen[n.String()] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
