package testkit

import (
	"fmt"

	"bugfree/internal/ast"
	"bugfree/internal/check"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/source"
)

// CheckTreeInvariants runs a minimal set of line invariants on a parsed file:
// 1) every node, name and use clause points at a line inside the file
// 2) node kinds are valid and use clauses carry a name unless malformed
// 3) namespace nodes only appear at the top level
func CheckTreeInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	lines := sf.LineCount()
	inFile := func(line int) bool { return line >= 1 && line <= max(lines, 1) }

	// ошибка "missing ..." в конце ввода стоит на строке после последней
	for _, e := range f.Errors {
		if e.Line < 0 || e.Line > lines+1 {
			return fmt.Errorf("syntax error line %d out of range (file has %d)", e.Line, lines)
		}
	}

	var err error
	depth := 0
	var walk func(nodes []*ast.Node)
	walk = func(nodes []*ast.Node) {
		for _, n := range nodes {
			if err != nil || n == nil {
				return
			}
			err = checkNode(n, depth, inFile)
			if err != nil {
				return
			}
			depth++
			walk(n.Children)
			depth--
		}
	}
	walk(f.Nodes)
	return err
}

func checkNode(n *ast.Node, depth int, inFile func(int) bool) error {
	if n.Kind == ast.KindInvalid || n.Kind.String() == "invalid" {
		return fmt.Errorf("invalid node kind %d at line %d", n.Kind, n.Line)
	}
	if !inFile(n.Line) {
		return fmt.Errorf("%s node line %d out of range", n.Kind, n.Line)
	}
	if n.Kind == ast.KindNamespace && depth > 0 {
		return fmt.Errorf("nested namespace at line %d", n.Line)
	}
	for _, group := range [][]*ast.Name{n.Extends, n.Implements, n.Types} {
		for _, name := range group {
			if name == nil {
				return fmt.Errorf("nil name in %s node at line %d", n.Kind, n.Line)
			}
			if !inFile(name.Line) {
				return fmt.Errorf("name %q line %d out of range", name.Written(), name.Line)
			}
		}
	}
	for _, u := range n.Uses {
		if !inFile(u.Line) {
			return fmt.Errorf("use clause line %d out of range", u.Line)
		}
		if !u.Malformed && (u.Name == nil || len(u.Name.Segments) == 0) {
			return fmt.Errorf("use clause at line %d has no name", u.Line)
		}
	}
	if n.Doc != nil {
		if !inFile(n.Doc.Line) {
			return fmt.Errorf("docblock line %d out of range", n.Doc.Line)
		}
		for _, tag := range n.Doc.Tags {
			if tag.Offset < 0 || !inFile(n.Doc.Line+tag.Offset) {
				return fmt.Errorf("doc tag @%s offset %d out of range", tag.Name, tag.Offset)
			}
		}
	}
	return nil
}

// CheckResultInvariants checks what the checker produced for sf:
// 1) diagnostics are materialized (never suppressed), valid and in range
//    (a syntax error at end of input may sit one line past the end)
// 2) fixes target existing lines (insertions may append one line)
func CheckResultInvariants(res *check.Result, sf *source.File) error {
	if res == nil || sf == nil {
		return fmt.Errorf("nil result or file")
	}
	lines := sf.LineCount()
	for _, d := range res.Diagnostics {
		if d.Severity == diag.SevSuppress {
			return fmt.Errorf("suppressed diagnostic materialized: %s", d.Formatted())
		}
		if !d.Kind.Valid() {
			return fmt.Errorf("invalid kind in %s", d.Formatted())
		}
		if d.Line < 0 || d.Line > lines+1 {
			return fmt.Errorf("diagnostic line %d out of range (file has %d)", d.Line, lines)
		}
	}

	// вставки нумеруются с учётом предыдущих вставок
	adds := 0
	for _, f := range res.Fixes {
		if f.Kind == fix.KindAdd {
			adds++
		}
	}
	for _, f := range res.Fixes {
		switch f.Kind {
		case fix.KindAdd:
			if f.Line < 1 || f.Line > lines+adds {
				return fmt.Errorf("%s: out of range", f)
			}
		case fix.KindSwap:
			if f.Line < 1 || f.Line > lines || f.Target < 1 || f.Target > lines {
				return fmt.Errorf("%s: out of range", f)
			}
		default:
			if f.Line < 1 || f.Line > lines {
				return fmt.Errorf("%s: out of range", f)
			}
		}
	}
	return nil
}
