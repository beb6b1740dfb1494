// Package resolve turns name references into fully qualified names,
// validates them against an oracle and decides between a diagnostic and an
// autofix for every problem it finds.
//
// The resolver never reports anything itself: it returns an Outcome that
// the caller feeds into its sink and fix set.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"bugfree/internal/ast"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/oracle"
	"bugfree/internal/qname"
	"bugfree/internal/scope"
)

// ErrEmptyName is returned for a name node without segments.
var ErrEmptyName = errors.New("name has no segments")

// Options configure a Resolver.
type Options struct {
	AutoFix bool
	Rooted  RootedPolicy
	// Hints caps the number of fuzzy "similar name" hints in messages.
	Hints int
}

// Finding is a diagnostic produced by the resolver.
type Finding struct {
	Kind    diag.Kind
	Line    int
	Message string
}

// Import asks the caller to add an import declaration.
type Import struct {
	Name qname.Name
	// Missing is the unresolved name the import stands in for.
	Missing   qname.Name
	Line      int
	InComment bool
	Reason    string
	// Rewrite shortens the reference to the imported alias; nil when the
	// reference is already written short.
	Rewrite *fix.Fix
	// Fallback is what gets reported instead when the import is declined.
	Fallback []Finding
}

// Outcome is what one resolution produced.
type Outcome struct {
	// Name is the resolved name; zero when the reference was skipped.
	Name     qname.Name
	Findings []Finding
	Fixes    []fix.Fix
	Imports  []Import
}

func (o *Outcome) merge(other Outcome) {
	o.Findings = append(o.Findings, other.Findings...)
	o.Fixes = append(o.Fixes, other.Fixes...)
	o.Imports = append(o.Imports, other.Imports...)
}

func (o *Outcome) report(kind diag.Kind, line int, msg string) {
	o.Findings = append(o.Findings, Finding{Kind: kind, Line: line, Message: msg})
}

// Resolver is immutable and may be shared between goroutines; all mutable
// state lives in the scope passed to each call.
type Resolver struct {
	oracle oracle.Oracle
	tables Tables
	opts   Options
}

func New(o oracle.Oracle, tables Tables, opts Options) *Resolver {
	return &Resolver{oracle: o, tables: tables, opts: opts}
}

// Tables exposes the lookup sets.
func (r *Resolver) Tables() Tables { return r.tables }

// AutoFix reports whether fixes are produced instead of diagnostics.
func (r *Resolver) AutoFix() bool { return r.opts.AutoFix }

// IsValid checks a name against the oracle and the classes declared in the
// current block.
func (r *Resolver) IsValid(name qname.Name, sc *scope.Scope) bool {
	if name.IsZero() {
		return false
	}
	return sc.IsDeclared(name) || r.oracle.IsValid(name)
}

var pseudoTypes = map[string]struct{}{
	"self":   {},
	"static": {},
	"parent": {},
	"$this":  {},
}

// ResolveName resolves a type reference seen on line. In comment mode the
// comment variants of the diagnostic kinds are used.
func (r *Resolver) ResolveName(ref *ast.Name, line int, sc *scope.Scope, inComment bool) (Outcome, error) {
	var out Outcome
	if ref == nil || len(ref.Segments) == 0 {
		return out, ErrEmptyName
	}
	segs := ref.Segments
	first := segs[0]
	fixLine := line
	if ref.Line > 0 {
		fixLine = ref.Line
	}

	if _, ok := pseudoTypes[strings.ToLower(first)]; ok {
		out.Name = r.resolvePseudo(strings.ToLower(first), segs[1:], sc)
		return out, nil
	}
	if len(segs) == 1 && r.tables.IsBuiltin(first) {
		return out, nil
	}

	written := ref.Written()
	last := segs[len(segs)-1]

	var qn qname.Name
	switch {
	case ref.FullyQualified:
		qn = qname.New(true, segs...)
	default:
		if a, ok := sc.Lookup(first); ok {
			qn = a.Target.Join(segs[1:]...)
			a.MarkUsed()
		} else {
			qn = sc.Qualify(segs...)
		}
	}
	out.Name = qn

	discouraged := r.opts.Rooted.flags(ref.FullyQualified, len(segs))
	if discouraged && r.opts.AutoFix && written != last {
		reason := fmt.Sprintf("Use of qualified type names is discouraged %d %s => %s", fixLine, written, last)
		if a, ok := sc.Lookup(last); ok {
			if a.Target.Equal(qn) {
				out.Fixes = append(out.Fixes, fix.ReplaceSubstring(fixLine, written, last, reason))
				a.MarkUsed()
				discouraged = false
			}
		} else if qn.InNamespace(sc.Namespace()) && r.IsValid(qn, sc) {
			out.Fixes = append(out.Fixes, fix.ReplaceSubstring(fixLine, written, last, reason))
			discouraged = false
		}
	}

	if !r.IsValid(qn, sc) {
		suggestions := r.oracle.Suggest(last)
		if r.opts.AutoFix && len(suggestions) == 1 {
			if r.autofixUnresolved(&out, ref, qn, suggestions[0], fixLine, sc) {
				for i := range out.Imports {
					imp := &out.Imports[i]
					imp.Line = line
					imp.InComment = inComment
					imp.Fallback = append(imp.Fallback, r.Declined(*imp))
					if discouraged {
						imp.Fallback = append(imp.Fallback, qualifiedFinding(line, inComment))
					}
				}
				return out, nil
			}
		}

		kind := diag.UnableToResolveType
		if inComment {
			kind = diag.UnableToResolveTypeInComment
		}
		out.report(kind, line, r.unresolvedMessage(qn, last, suggestions))
	}

	if discouraged {
		out.Findings = append(out.Findings, qualifiedFinding(line, inComment))
	}
	return out, nil
}

func qualifiedFinding(line int, inComment bool) Finding {
	kind := diag.UseOfUnqualifiedType
	if inComment {
		kind = diag.UseOfUnqualifiedTypeInComment
	}
	return Finding{Kind: kind, Line: line, Message: "Use of qualified type names is discouraged."}
}

// autofixUnresolved rewrites a reference to a single suggestion. It reports
// false when doing so would collide with an existing alias or with a class
// of the current namespace.
func (r *Resolver) autofixUnresolved(out *Outcome, ref *ast.Name, qn, suggestion qname.Name, line int, sc *scope.Scope) bool {
	written := ref.Written()
	short := suggestion.Last()
	reason := fmt.Sprintf("%s could not be resolved, assuming %s", qn.String(), suggestion.String())

	existing, aliased := sc.Lookup(short)
	switch {
	case aliased && existing.Target.Equal(suggestion):
		if written == short {
			return false
		}
		out.Fixes = append(out.Fixes, fix.ReplaceSubstring(line, written, short, reason))
		existing.MarkUsed()
		return true
	case aliased:
		return false
	case r.IsValid(sc.Qualify(short), sc):
		return false
	}

	if _, isAlias := sc.Lookup(ref.Segments[0]); isAlias && !ref.FullyQualified {
		// имя уже шло через алиас, второй импорт только запутает
		return false
	}
	imp := Import{Name: suggestion, Missing: qn, Reason: reason}
	if written != short {
		rw := fix.ReplaceSubstring(line, written, short, reason)
		imp.Rewrite = &rw
	}
	out.Imports = append(out.Imports, imp)
	return true
}

// Declined turns a requested import back into the diagnostic it replaced.
// It heads the import's Fallback.
func (r *Resolver) Declined(imp Import) Finding {
	kind := diag.UnableToResolveType
	if imp.InComment {
		kind = diag.UnableToResolveTypeInComment
	}
	return Finding{
		Kind:    kind,
		Line:    imp.Line,
		Message: r.unresolvedMessage(imp.Missing, imp.Name.Last(), []qname.Name{imp.Name}),
	}
}

func (r *Resolver) unresolvedMessage(qn qname.Name, last string, suggestions []qname.Name) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Type '%s' could not be resolved.", qn.String())
	if len(suggestions) > 0 {
		sb.WriteString(" Perhaps you meant one of these?")
		for _, s := range suggestions {
			sb.WriteString("\n  - ")
			sb.WriteString(s.String())
		}
		return sb.String()
	}
	if h, ok := r.oracle.(oracle.Hinter); ok && r.opts.Hints > 0 {
		similar := h.Similar(last, r.opts.Hints)
		if len(similar) > 0 {
			parts := make([]string, len(similar))
			for i, s := range similar {
				parts[i] = s.String()
			}
			sb.WriteString(" Similar names: ")
			sb.WriteString(strings.Join(parts, ", "))
		}
	}
	return sb.String()
}

// resolvePseudo resolves self/$this/parent against the enclosing class.
// static is late bound and never checked.
func (r *Resolver) resolvePseudo(first string, rest []string, sc *scope.Scope) qname.Name {
	cls, ok := sc.CurrentClass()
	if !ok {
		return qname.Name{}
	}
	switch first {
	case "self", "$this":
		return cls.Name.Join(rest...)
	case "parent":
		if cls.Base.IsZero() {
			return qname.Name{}
		}
		return cls.Base.Join(rest...)
	}
	return qname.Name{}
}
