package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"bugfree/internal/ast"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/scope"
)

// Теги, у которых первое слово значения - тип.
var typeTags = map[string]struct{}{
	"var":      {},
	"param":    {},
	"return":   {},
	"method":   {},
	"property": {},
	"throws":   {},
}

// Служебные аннотации doctrine, имена которых не являются классами.
var metaAnnotations = map[string]struct{}{
	"Annotation": {},
	"Target":     {},
}

var wordSplit = regexp.MustCompile(`[\s\[]+`)

const typesURL = "http://www.phpdoc.org/docs/latest/for-users/phpdoc/types.html"

// ResolveDocTag checks one docblock tag of a comment starting on docLine.
// Types found in it are resolved in comment mode.
func (r *Resolver) ResolveDocTag(tag ast.DocTag, docLine int, sc *scope.Scope) (Outcome, error) {
	var out Outcome
	line := docLine + tag.Offset

	if tag.Annotation {
		if _, meta := metaAnnotations[tag.Name]; !meta {
			o, err := r.resolveDocType(tag.Name, "@", line, sc)
			if err != nil {
				return out, err
			}
			out.merge(o)
		}
		for _, ref := range tag.Refs {
			o, err := r.resolveDocType(ref.Text, "", docLine+ref.Offset, sc)
			if err != nil {
				return out, err
			}
			out.merge(o)
		}
		return out, nil
	}

	if _, ok := typeTags[tag.Name]; ok {
		o, err := r.resolveTagValue(tag.Value, line, sc)
		if err != nil {
			return out, err
		}
		out.merge(o)
	}

	if want, ok := r.tables.TagTypo(tag.Name); ok {
		reason := fmt.Sprintf("@%s should be @%s", tag.Name, want)
		if r.opts.AutoFix {
			out.Fixes = append(out.Fixes, fix.ReplaceSubstring(line, "@"+tag.Name, "@"+want, reason))
		} else {
			out.report(diag.CommonTypos, line, reason)
		}
	}
	return out, nil
}

func (r *Resolver) resolveTagValue(value string, line int, sc *scope.Scope) (Outcome, error) {
	var words []string
	for _, w := range wordSplit.Split(strings.TrimSpace(value), -1) {
		if w != "" {
			words = append(words, w)
		}
	}

	typ := ""
	switch {
	case len(words) == 0:
	case isVariable(words[0]):
		// `@var $foo Type` - тип записан после имени
		if len(words) > 1 {
			typ = words[1]
		}
	default:
		typ = words[0]
	}
	if typ == "" || isVariable(typ) {
		var out Outcome
		out.report(diag.UnableToResolveTypeInComment, line, "No type specified, please specify a type")
		return out, nil
	}
	return r.resolveDocType(typ, " ", line, sc)
}

// resolveDocType handles a `A|B[]|null` style token. prefix is the text that
// precedes the token on its line and makes typo rewrites unambiguous.
func (r *Resolver) resolveDocType(token, prefix string, line int, sc *scope.Scope) (Outcome, error) {
	var out Outcome
	for _, raw := range strings.Split(token, "|") {
		part := normalizeDocType(raw)
		if part == "" || r.tables.IsBuiltin(part) {
			continue
		}
		if repl, ok := r.tables.TypeTypo(part); ok {
			reason := fmt.Sprintf("%s is not a valid type. Please see %s for a list of valid types.", strings.ToLower(part), typesURL)
			if r.opts.AutoFix {
				fixed := strings.Replace(token, part, repl, 1)
				out.Fixes = append(out.Fixes, fix.ReplaceSubstring(line, prefix+token, prefix+fixed, reason))
			} else {
				out.report(diag.CommonTypos, line, reason)
			}
			continue
		}
		o, err := r.ResolveName(ast.NewName(part, line), line, sc, true)
		if err != nil {
			return out, err
		}
		out.merge(o)
	}
	return out, nil
}

func isVariable(word string) bool {
	word = strings.TrimPrefix(word, "...")
	return strings.HasPrefix(word, "$") && word != "$this"
}

func normalizeDocType(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "...")
	s = strings.Trim(s, "()")
	s = strings.TrimPrefix(s, "?")
	if i := strings.IndexAny(s, "<{("); i >= 0 {
		s = s[:i]
	}
	for strings.HasSuffix(s, "[]") {
		s = strings.TrimSuffix(s, "[]")
	}
	s = strings.TrimRight(s, ",;.)")
	return s
}
