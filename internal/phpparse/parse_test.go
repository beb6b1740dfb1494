package phpparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/ast"
)

const sample = `<?php
namespace app\model;

use lib\Base;
use lib\Contract as C;
use function lib\helper;

/**
 * @Entity
 */
class User extends Base implements C
{
    use Timestamps;

    /** @var Address */
    private ?Address $address = null;

    public function make(Factory $f, int $n): \lib\Result
    {
        $x = new Thing();
        if ($x instanceof Other) {
            return Util::build();
        }
        try {
        } catch (Oops $e) {
        }
    }
}
`

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := Parse(context.Background(), "test.php", []byte(src))
	require.NoError(t, err)
	return f
}

func refs(nodes []*ast.Node) []string {
	var out []string
	ast.Inspect(nodes, func(n *ast.Node) bool {
		for _, names := range [][]*ast.Name{n.Extends, n.Implements, n.Types} {
			for _, name := range names {
				out = append(out, name.Written())
			}
		}
		return true
	})
	return out
}

func TestParseNamespaceAndUses(t *testing.T) {
	f := parse(t, sample)
	assert.Empty(t, f.Errors)

	blocks := ast.Blocks(f)
	require.Len(t, blocks, 1)
	head := blocks[0].Head
	require.NotNil(t, head)
	assert.Equal(t, `app\model`, head.Name.QName().String())
	assert.Equal(t, 2, head.Line)

	var uses []ast.UseClause
	for _, n := range blocks[0].Body {
		if n.Kind == ast.KindUse {
			uses = append(uses, n.Uses...)
		}
	}
	require.Len(t, uses, 2, "function imports are skipped")
	assert.Equal(t, `lib\Base`, uses[0].Name.QName().String())
	assert.Equal(t, 4, uses[0].Line)
	assert.Equal(t, "C", uses[1].Alias)
}

func TestParseClassReferences(t *testing.T) {
	f := parse(t, sample)
	got := refs(f.Nodes)
	for _, want := range []string{"Base", "C", "Timestamps", "Address", "Factory", `\lib\Result`, "Thing", "Other", "Util", "Oops"} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "int")
}

func TestParseDocblocks(t *testing.T) {
	f := parse(t, sample)
	var class, prop *ast.Node
	ast.Inspect(f.Nodes, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindClass:
			class = n
		case ast.KindProperty:
			prop = n
		}
		return true
	})
	require.NotNil(t, class)
	require.NotNil(t, class.Doc)
	assert.Equal(t, 8, class.Doc.Line)
	require.Len(t, class.Doc.Tags, 1)
	assert.Equal(t, "Entity", class.Doc.Tags[0].Name)
	assert.Equal(t, 1, class.Doc.Tags[0].Offset)

	require.NotNil(t, prop)
	require.NotNil(t, prop.Doc)
	assert.Equal(t, 16, prop.Doc.Line)
	assert.Equal(t, "Address", prop.Doc.Tags[0].Value)
}

func TestParseGroupUse(t *testing.T) {
	f := parse(t, "<?php\nnamespace a;\nuse lib\\{One, Two as Deux};\n")
	var clauses []ast.UseClause
	ast.Inspect(f.Nodes, func(n *ast.Node) bool {
		if n.Kind == ast.KindUse {
			clauses = append(clauses, n.Uses...)
		}
		return true
	})
	require.Len(t, clauses, 2)
	assert.Equal(t, `lib\One`, clauses[0].Name.QName().String())
	assert.Equal(t, `lib\Two`, clauses[1].Name.QName().String())
	assert.Equal(t, "Deux", clauses[1].Alias)
}

func TestParseUnbracedNamespacesSplitBlocks(t *testing.T) {
	f := parse(t, "<?php\nnamespace a;\nclass X {}\nnamespace b;\nclass Y {}\n")
	blocks := ast.Blocks(f)
	require.Len(t, blocks, 2)
	assert.Equal(t, "X", blocks[0].Body[0].Ident)
	assert.Equal(t, "Y", blocks[1].Body[0].Ident)
}

func TestParseFileHeaderDocIsDropped(t *testing.T) {
	f := parse(t, "<?php\n/**\n * @author Someone\n */\n\nnamespace a;\n")
	assert.Len(t, ast.Blocks(f), 1)
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	f := parse(t, "<?php\nnamespace a;\nclass {\n")
	assert.NotEmpty(t, f.Errors)
}

func TestDeclared(t *testing.T) {
	f := parse(t, sample)
	names := Declared(f)
	require.Len(t, names, 1)
	assert.Equal(t, `app\model\User`, names[0].String())
}
