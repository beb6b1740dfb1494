package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/ast"
	"bugfree/internal/check"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/phpparse"
	"bugfree/internal/source"
)

const src = "<?php\nnamespace app;\n\nuse lib\\Base;\n\nclass User extends Base {}\n"

func load(t *testing.T) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("User.php", []byte(src)))
}

func TestTreeInvariantsHoldForParsedFile(t *testing.T) {
	sf := load(t)
	tree, err := phpparse.Parse(context.Background(), sf.Path, sf.Content)
	require.NoError(t, err)
	assert.NoError(t, CheckTreeInvariants(tree, sf))
}

func TestTreeInvariantsCatchBadLines(t *testing.T) {
	sf := load(t)
	tree := &ast.File{Nodes: []*ast.Node{{Kind: ast.KindTypeRef, Line: 99}}}
	assert.Error(t, CheckTreeInvariants(tree, sf))

	nested := &ast.File{Nodes: []*ast.Node{{
		Kind: ast.KindNamespace, Line: 2,
		Children: []*ast.Node{{Kind: ast.KindNamespace, Line: 3}},
	}}}
	assert.Error(t, CheckTreeInvariants(nested, sf))

	noName := &ast.File{Nodes: []*ast.Node{{Kind: ast.KindUse, Line: 4, Uses: []ast.UseClause{{Line: 4}}}}}
	assert.Error(t, CheckTreeInvariants(noName, sf))
}

func TestResultInvariants(t *testing.T) {
	sf := load(t)
	ok := &check.Result{
		Diagnostics: []diag.Diagnostic{diag.New(diag.SevWarning, diag.UnusedUse, "User.php", 4, "unused")},
		Fixes:       []fix.Fix{fix.RemoveLine(4, ""), fix.AddLine(sf.LineCount()+1, "x", "")},
	}
	assert.NoError(t, CheckResultInvariants(ok, sf))

	suppressed := &check.Result{Diagnostics: []diag.Diagnostic{diag.New(diag.SevSuppress, diag.UnusedUse, "User.php", 4, "x")}}
	assert.Error(t, CheckResultInvariants(suppressed, sf))

	badSwap := &check.Result{Fixes: []fix.Fix{fix.SwapLines(1, 40, "")}}
	assert.Error(t, CheckResultInvariants(badSwap, sf))

	n := sf.LineCount()
	stacked := &check.Result{Fixes: []fix.Fix{fix.AddLine(n+1, "", ""), fix.AddLine(n+2, "use x;", "")}}
	assert.NoError(t, CheckResultInvariants(stacked, sf))

	badAdd := &check.Result{Fixes: []fix.Fix{fix.AddLine(n+2, "use x;", "")}}
	assert.Error(t, CheckResultInvariants(badAdd, sf))
}
