package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/ast"
	"bugfree/internal/diag"
	"bugfree/internal/qname"
)

func TestDocTagTypes(t *testing.T) {
	r := newResolver(registry(`app\Turtle`), Options{})
	sc := nsScope("app")

	tests := []struct {
		name  string
		tag   ast.DocTag
		kinds []diag.Kind
	}{
		{"builtin", ast.DocTag{Name: "param", Value: "string $foo a foo"}, []diag.Kind{}},
		{"known", ast.DocTag{Name: "param", Value: "Turtle $t a turtle"}, []diag.Kind{}},
		{"reversed", ast.DocTag{Name: "var", Value: "$t Turtle"}, []diag.Kind{}},
		{"union and array", ast.DocTag{Name: "return", Value: "Turtle[]|null"}, []diag.Kind{}},
		{"nullable", ast.DocTag{Name: "var", Value: "?Turtle"}, []diag.Kind{}},
		{"this", ast.DocTag{Name: "return", Value: "$this"}, []diag.Kind{}},
		{"unknown", ast.DocTag{Name: "throws", Value: "Nope"}, []diag.Kind{diag.UnableToResolveTypeInComment}},
		{"missing type", ast.DocTag{Name: "param", Value: "$foo a foo"}, []diag.Kind{diag.UnableToResolveTypeInComment}},
		{"empty", ast.DocTag{Name: "return"}, []diag.Kind{diag.UnableToResolveTypeInComment}},
		{"type typo", ast.DocTag{Name: "param", Value: "numeric $n"}, []diag.Kind{diag.CommonTypos}},
		{"tag typo", ast.DocTag{Name: "returns", Value: "string"}, []diag.Kind{diag.CommonTypos}},
		{"untyped tag", ast.DocTag{Name: "author", Value: "Some One"}, []diag.Kind{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.ResolveDocTag(tt.tag, 10, sc)
			require.NoError(t, err)
			assert.Equal(t, tt.kinds, kinds(out))
		})
	}
}

func TestDocTagLineOffset(t *testing.T) {
	r := newResolver(registry(), Options{})
	out, err := r.ResolveDocTag(ast.DocTag{Name: "var", Value: "Missing", Offset: 3}, 10, nsScope("app"))
	require.NoError(t, err)
	require.Len(t, out.Findings, 1)
	assert.Equal(t, 13, out.Findings[0].Line)
}

func TestDocTypoAutofix(t *testing.T) {
	r := newResolver(registry(), Options{AutoFix: true})
	sc := nsScope("app")

	out, err := r.ResolveDocTag(ast.DocTag{Name: "param", Value: "date $date"}, 4, sc)
	require.NoError(t, err)
	assert.Empty(t, out.Findings)
	require.Len(t, out.Fixes, 1)
	assert.Equal(t, " date", out.Fixes[0].Search)
	assert.Equal(t, ` \DateTime`, out.Fixes[0].Replacement)

	out, err = r.ResolveDocTag(ast.DocTag{Name: "throw", Value: "Exception", Offset: 1}, 4, sc)
	require.NoError(t, err)
	require.Len(t, out.Fixes, 1)
	assert.Equal(t, "@throw", out.Fixes[0].Search)
	assert.Equal(t, "@throws", out.Fixes[0].Replacement)
	assert.Equal(t, 5, out.Fixes[0].Line)
}

func TestDoctrineAnnotations(t *testing.T) {
	r := newResolver(registry(`Doctrine\ORM\Mapping\Entity`, `app\Status`), Options{})
	sc := nsScope("app")
	orm, _ := sc.Bind("ORM", qname.Parse(`Doctrine\ORM\Mapping`), 3)

	out, err := r.ResolveDocTag(ast.DocTag{Name: `ORM\Entity`, Annotation: true}, 7, sc)
	require.NoError(t, err)
	assert.Equal(t, 1, orm.UseCount())
	assert.Equal(t, []diag.Kind{diag.UseOfUnqualifiedTypeInComment}, kinds(out))

	out, err = r.ResolveDocTag(ast.DocTag{
		Name:       "Target",
		Annotation: true,
		Refs:       []ast.DocRef{{Text: "Status", Offset: 1}, {Text: "Gone", Offset: 2}},
	}, 7, sc)
	require.NoError(t, err)
	require.Len(t, out.Findings, 1)
	assert.Equal(t, diag.UnableToResolveTypeInComment, out.Findings[0].Kind)
	assert.Equal(t, 9, out.Findings[0].Line)
}

func TestNormalizeDocType(t *testing.T) {
	for in, want := range map[string]string{
		"Foo[]":          "Foo",
		"?Foo":           "Foo",
		"(Foo":           "Foo",
		"array<int,Foo>": "array",
		"...Foo":         "Foo",
		`\a\B[][]`:       `\a\B`,
	} {
		assert.Equal(t, want, normalizeDocType(in), in)
	}
}
