// Package phpparse is the PHP front-end: it runs the tree-sitter PHP
// grammar over a source file and lowers the concrete tree into the small
// ast the checker consumes.
package phpparse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"bugfree/internal/ast"
)

// ErrNoTree is returned when tree-sitter produced nothing at all.
var ErrNoTree = errors.New("parser returned no tree")

// Parsers are not safe for concurrent use; the pool hands one to each
// caller.
var parserPool = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(php.GetLanguage())
		return p
	},
}

// Parse lowers src into an ast.File. Syntax errors do not fail the parse:
// they are recorded in File.Errors and the rest of the tree is still
// lowered.
func Parse(ctx context.Context, path string, src []byte) (*ast.File, error) {
	p, _ := parserPool.Get().(*sitter.Parser)
	defer parserPool.Put(p)

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s: %w", path, ErrNoTree)
	}
	defer tree.Close()

	root := tree.RootNode()
	b := &builder{src: src}
	f := &ast.File{
		Path:  path,
		Nodes: b.program(root),
	}
	if root.HasError() {
		f.Errors = syntaxErrors(root, src)
	}
	return f, nil
}

// syntaxErrors collects ERROR and MISSING nodes. Nested errors inside an
// ERROR node are not reported again.
func syntaxErrors(n *sitter.Node, src []byte) []ast.SyntaxError {
	var out []ast.SyntaxError
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch {
		case n.IsMissing():
			out = append(out, ast.SyntaxError{Line: line(n), Message: fmt.Sprintf("syntax error, missing %s", n.Type())})
			return
		case n.IsError():
			out = append(out, ast.SyntaxError{Line: line(n), Message: fmt.Sprintf("syntax error, unexpected %q", firstLine(n.Content(src)))})
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	return out
}
