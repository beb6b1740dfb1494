// Package check walks one parsed file, keeps the scope up to date, asks the
// resolver about every name reference and turns the answers into
// diagnostics and fixes. Import bookkeeping at the end of each namespace
// block lives in imports.go.
package check

import (
	"errors"
	"fmt"

	"bugfree/internal/ast"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/imports"
	"bugfree/internal/qname"
	"bugfree/internal/resolve"
	"bugfree/internal/scope"
)

// ErrMalformedTree reports a tree the checker cannot walk. Diagnostics
// emitted before the fault stay in the sink.
var ErrMalformedTree = errors.New("malformed syntax tree")

// Checker owns the per-file state. It is not safe for concurrent use; run
// one Checker per file.
type Checker struct {
	res   *resolve.Resolver
	sink  diag.Reporter
	fixes *fix.Set
	scope *scope.Scope

	// lineEdits разрешает фиксы, меняющие число строк: только для файлов
	// с одним блоком namespace.
	lineEdits bool
	decls     []imports.Declaration
	// строки, целиком занятые одним use с одним элементом
	whole map[int]int
	// grouped is set once a block has `use A, B;` or a group use
	grouped bool
	// imports requested by autofix, placed when the block closes
	adds []resolve.Import
}

// New binds a checker to its outputs.
func New(res *resolve.Resolver, sink diag.Reporter, fixes *fix.Set) *Checker {
	return &Checker{
		res:   res,
		sink:  sink,
		fixes: fixes,
		scope: scope.New(),
	}
}

// Result is what Run collects for one file.
type Result struct {
	Path        string
	Diagnostics []diag.Diagnostic
	// Fixes are in application order.
	Fixes []fix.Fix
}

// Run checks f with a fresh sink and fix set.
func Run(f *ast.File, res *resolve.Resolver, levels diag.Levels) (*Result, error) {
	sink := diag.NewSink(f.Path, levels)
	set := fix.NewSet()
	err := New(res, sink, set).File(f)
	return &Result{Path: f.Path, Diagnostics: sink.Diagnostics(), Fixes: set.Sorted()}, err
}

// File checks one file.
func (c *Checker) File(f *ast.File) error {
	if f == nil {
		return fmt.Errorf("%w: nil file", ErrMalformedTree)
	}
	c.scope.Reset()

	for _, e := range f.Errors {
		c.sink.Report(diag.ParseError, e.Line, e.Message)
	}

	blocks := ast.Blocks(f)
	c.lineEdits = len(blocks) == 1
	for _, b := range blocks {
		if err := c.block(b); err != nil {
			return err
		}
	}

	if !c.scope.SawNamespace() {
		c.sink.Report(diag.MissingNamespace, 0, "Every source file should have a namespace")
	}
	return nil
}

func (c *Checker) block(b ast.Block) error {
	if b.Head != nil {
		// `namespace { ... }` объявляет глобальный блок явно
		ns := qname.Name{}
		if b.Head.Name != nil {
			ns = b.Head.Name.QName()
		}
		c.scope.EnterNamespace(ns, b.Head.Line)
		if err := c.doc(b.Head); err != nil {
			return err
		}
	} else {
		c.scope.EnterGlobal()
	}
	c.decls = nil
	c.whole = make(map[int]int)
	c.grouped = false
	c.adds = nil

	// классы блока видны до объявления
	ast.Inspect(b.Body, func(n *ast.Node) bool {
		if n.Kind == ast.KindClass && n.Ident != "" {
			c.scope.Declare(c.scope.Qualify(n.Ident))
		}
		return true
	})

	for _, n := range b.Body {
		if err := c.node(n); err != nil {
			return err
		}
	}
	c.closeBlock()
	return nil
}

func (c *Checker) nodes(list []*ast.Node) error {
	for _, n := range list {
		if err := c.node(n); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) node(n *ast.Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrMalformedTree)
	}

	switch n.Kind {
	case ast.KindUse:
		return c.use(n)

	case ast.KindClass:
		return c.class(n)

	case ast.KindTraitUse, ast.KindTypeRef:
		if err := c.doc(n); err != nil {
			return err
		}
		return c.names(n.Types, n.Line)

	case ast.KindFunction:
		if err := c.doc(n); err != nil {
			return err
		}
		if err := c.names(n.Types, n.Line); err != nil {
			return err
		}
		return c.nodes(n.Children)

	case ast.KindProperty:
		if err := c.doc(n); err != nil {
			return err
		}
		return c.names(n.Types, n.Line)

	default:
		return fmt.Errorf("%w: unexpected %s node on line %d", ErrMalformedTree, n.Kind, n.Line)
	}
}

func (c *Checker) class(n *ast.Node) error {
	if err := c.doc(n); err != nil {
		return err
	}

	cls := scope.Class{}
	if n.Ident != "" {
		cls.Name = c.scope.Qualify(n.Ident)
	}
	for _, ext := range n.Extends {
		out, err := c.resolve(ext, n.Line)
		if err != nil {
			return err
		}
		// у интерфейсов extends бывает несколько, parent тогда не определён
		if len(n.Extends) == 1 {
			cls.Base = out.Name
		}
	}
	if err := c.names(n.Implements, n.Line); err != nil {
		return err
	}

	c.scope.PushClass(cls)
	defer c.scope.PopClass()
	return c.nodes(n.Children)
}

func (c *Checker) names(list []*ast.Name, line int) error {
	for _, name := range list {
		if _, err := c.resolve(name, line); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) resolve(name *ast.Name, line int) (resolve.Outcome, error) {
	out, err := c.res.ResolveName(name, line, c.scope, false)
	if err != nil {
		return out, fmt.Errorf("%w: line %d: %w", ErrMalformedTree, line, err)
	}
	c.apply(out)
	return out, nil
}

func (c *Checker) doc(n *ast.Node) error {
	if n.Doc == nil {
		return nil
	}
	for _, tag := range n.Doc.Tags {
		out, err := c.res.ResolveDocTag(tag, n.Doc.Line, c.scope)
		if err != nil {
			return fmt.Errorf("%w: docblock on line %d: %w", ErrMalformedTree, n.Doc.Line, err)
		}
		c.apply(out)
	}
	return nil
}

// apply moves an outcome into the sink and the fix set. Requested imports
// that cannot be inserted fall back to the diagnostic they replaced, and
// the rewrites that depended on them are dropped.
func (c *Checker) apply(out resolve.Outcome) {
	for _, f := range out.Findings {
		c.sink.Report(f.Kind, f.Line, f.Message)
	}
	for _, f := range out.Fixes {
		c.fixes.Add(f)
	}
	for _, imp := range out.Imports {
		if !c.canAddLines() {
			// импорт не вставить, его правки откатываются в диагностики
			for _, f := range imp.Fallback {
				c.sink.Report(f.Kind, f.Line, f.Message)
			}
			continue
		}
		if imp.Rewrite != nil {
			c.fixes.Add(*imp.Rewrite)
		}
		c.addUse(imp)
	}
}

func (c *Checker) canAddLines() bool {
	return c.lineEdits && c.scope.InNamespace()
}
