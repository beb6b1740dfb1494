package oracle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"bugfree/internal/qname"
)

// minSimilarity is the Jaro-Winkler score a short name needs to be offered
// as a hint.
const minSimilarity = 0.85

// Registry is an in-memory set of known type names. Every proper prefix of a
// registered name is a known namespace.
type Registry struct {
	names      map[string]qname.Name
	namespaces map[string]struct{}
	byShort    map[string][]qname.Name
	byFold     map[string][]qname.Name
	shorts     []string
}

// NewRegistry indexes names. Empty names are ignored.
func NewRegistry(names ...qname.Name) *Registry {
	r := &Registry{
		names:      make(map[string]qname.Name, len(names)),
		namespaces: make(map[string]struct{}),
		byShort:    make(map[string][]qname.Name),
		byFold:     make(map[string][]qname.Name),
	}
	for _, n := range names {
		r.add(n)
	}
	for short, list := range r.byShort {
		sortNames(list)
		r.shorts = append(r.shorts, short)
	}
	for _, list := range r.byFold {
		sortNames(list)
	}
	sort.Strings(r.shorts)
	return r
}

// Merge returns a registry holding the names of all inputs.
func Merge(regs ...*Registry) *Registry {
	var all []qname.Name
	for _, r := range regs {
		if r == nil {
			continue
		}
		all = append(all, r.Names()...)
	}
	return NewRegistry(all...)
}

func (r *Registry) add(n qname.Name) {
	if n.IsZero() {
		return
	}
	key := n.String()
	if _, dup := r.names[key]; dup {
		return
	}
	n = qname.New(true, n.Segments()...)
	r.names[key] = n
	short := n.Last()
	r.byShort[short] = append(r.byShort[short], n)
	folded := qname.Fold(short)
	r.byFold[folded] = append(r.byFold[folded], n)
	for p := n.Parent(); !p.IsZero(); p = p.Parent() {
		r.namespaces[p.String()] = struct{}{}
	}
}

// Len returns the number of registered type names.
func (r *Registry) Len() int { return len(r.names) }

// Names returns every registered name, sorted.
func (r *Registry) Names() []qname.Name {
	out := make([]qname.Name, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, n)
	}
	sortNames(out)
	return out
}

func (r *Registry) IsValid(name qname.Name) bool {
	if name.IsZero() {
		return false
	}
	key := name.String()
	if _, ok := r.names[key]; ok {
		return true
	}
	_, ok := r.namespaces[key]
	return ok
}

// Suggest prefers exact short-name matches and falls back to
// case-insensitive ones.
func (r *Registry) Suggest(short string) []qname.Name {
	if list := r.byShort[short]; len(list) > 0 {
		return append([]qname.Name(nil), list...)
	}
	if list := r.byFold[qname.Fold(short)]; len(list) > 0 {
		return append([]qname.Name(nil), list...)
	}
	return nil
}

// Similar ranks registered short names by Jaro-Winkler similarity to short
// and returns the names behind the best ones.
func (r *Registry) Similar(short string, limit int) []qname.Name {
	if short == "" || limit <= 0 {
		return nil
	}
	type scored struct {
		short string
		score float32
	}
	var hits []scored
	for _, cand := range r.shorts {
		if cand == short {
			continue
		}
		score, err := edlib.StringsSimilarity(qname.Fold(short), qname.Fold(cand), edlib.JaroWinkler)
		if err != nil || score < minSimilarity {
			continue
		}
		hits = append(hits, scored{short: cand, score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].short < hits[j].short
	})

	var out []qname.Name
	for _, h := range hits {
		for _, n := range r.byShort[h.short] {
			if len(out) == limit {
				return out
			}
			out = append(out, n)
		}
	}
	return out
}

// ReadClassList parses one qualified name per line. Blank lines and lines
// starting with '#' are skipped.
func ReadClassList(rd io.Reader) ([]qname.Name, error) {
	var out []qname.Name
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if n := qname.Parse(line); !n.IsZero() {
			out = append(out, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read class list: %w", err)
	}
	return out, nil
}

// LoadClassLists reads several class-list files into one registry.
func LoadClassLists(paths ...string) (*Registry, error) {
	var all []qname.Name
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open class list: %w", err)
		}
		names, err := ReadClassList(f)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if closeErr != nil {
			return nil, closeErr
		}
		all = append(all, names...)
	}
	return NewRegistry(all...), nil
}

func sortNames(list []qname.Name) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].String() < list[j].String()
	})
}
