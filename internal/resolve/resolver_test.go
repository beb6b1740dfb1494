package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/ast"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/oracle"
	"bugfree/internal/qname"
	"bugfree/internal/scope"
)

func registry(names ...string) *oracle.Registry {
	out := make([]qname.Name, 0, len(names))
	for _, n := range names {
		out = append(out, qname.Parse(n))
	}
	return oracle.NewRegistry(out...)
}

func newResolver(o oracle.Oracle, opts Options) *Resolver {
	return New(o, DefaultTables(), opts)
}

func nsScope(ns string) *scope.Scope {
	sc := scope.New()
	sc.EnterNamespace(qname.Parse(ns), 1)
	return sc
}

func kinds(out Outcome) []diag.Kind {
	ks := make([]diag.Kind, 0, len(out.Findings))
	for _, f := range out.Findings {
		ks = append(ks, f.Kind)
	}
	return ks
}

func TestUnresolvedRelativeMultiSegment(t *testing.T) {
	r := newResolver(registry(`foo\Other`), Options{})
	sc := nsScope("foo")

	out, err := r.ResolveName(ast.NewName(`testns\DoesNotExist`, 5), 5, sc, false)
	require.NoError(t, err)
	assert.Equal(t, []diag.Kind{diag.UnableToResolveType, diag.UseOfUnqualifiedType}, kinds(out))
	assert.Equal(t, `foo\testns\DoesNotExist`, out.Name.String())
	assert.Contains(t, out.Findings[0].Message, `Type 'foo\testns\DoesNotExist' could not be resolved.`)
	assert.Empty(t, out.Fixes)
}

func TestCommentVariants(t *testing.T) {
	r := newResolver(registry(), Options{})
	out, err := r.ResolveName(ast.NewName(`a\B`, 3), 3, nsScope("foo"), true)
	require.NoError(t, err)
	assert.Equal(t, []diag.Kind{diag.UnableToResolveTypeInComment, diag.UseOfUnqualifiedTypeInComment}, kinds(out))
}

func TestAliasSubstitutionMarksUsed(t *testing.T) {
	r := newResolver(registry(`x\Foo\Bar`), Options{})
	sc := nsScope("app")
	a, _ := sc.Bind("Foo", qname.Parse(`x\Foo`), 2)

	out, err := r.ResolveName(ast.NewName(`Foo`, 4), 4, sc, false)
	require.NoError(t, err)
	assert.Equal(t, `x\Foo`, out.Name.String())
	assert.Equal(t, 1, a.UseCount())
	// x\Foo is a namespace of x\Foo\Bar, so it is valid
	assert.Empty(t, out.Findings)

	out, err = r.ResolveName(ast.NewName(`foo\Bar`, 6), 6, sc, false)
	require.NoError(t, err)
	assert.Equal(t, `x\Foo\Bar`, out.Name.String())
	assert.Equal(t, 2, a.UseCount())
	assert.Equal(t, []diag.Kind{diag.UseOfUnqualifiedType}, kinds(out))
}

func TestPseudoTypes(t *testing.T) {
	r := newResolver(registry(), Options{})
	sc := nsScope("app")

	out, err := r.ResolveName(ast.NewName("self", 1), 1, sc, false)
	require.NoError(t, err)
	assert.True(t, out.Name.IsZero())
	assert.Empty(t, out.Findings)

	sc.PushClass(scope.Class{Name: qname.Parse(`app\Child`), Base: qname.Parse(`app\Base`)})
	for text, want := range map[string]string{
		"self":   `app\Child`,
		"$this":  `app\Child`,
		"parent": `app\Base`,
		"static": ``,
	} {
		out, err := r.ResolveName(ast.NewName(text, 1), 1, sc, false)
		require.NoError(t, err)
		assert.Equal(t, want, out.Name.String(), text)
		assert.Empty(t, out.Findings, text)
	}
}

func TestBuiltinsAreSkipped(t *testing.T) {
	r := newResolver(registry(), Options{})
	for _, b := range []string{"int", "String", "MIXED", "callable", "void"} {
		out, err := r.ResolveName(ast.NewName(b, 1), 1, nsScope("app"), false)
		require.NoError(t, err)
		assert.Empty(t, out.Findings, b)
		assert.True(t, out.Name.IsZero(), b)
	}
}

func TestEmptyNameIsAnError(t *testing.T) {
	r := newResolver(registry(), Options{})
	_, err := r.ResolveName(&ast.Name{Line: 1}, 1, nsScope("a"), false)
	assert.True(t, errors.Is(err, ErrEmptyName))
}

func TestRootedPolicy(t *testing.T) {
	reg := registry(`a\B`, `C`)
	tests := []struct {
		policy RootedPolicy
		ref    string
		warn   bool
	}{
		{RootedExempt, `\a\B`, false},
		{RootedExempt, `\C`, false},
		{RootedMultiSegment, `\a\B`, true},
		{RootedMultiSegment, `\C`, false},
		{RootedAll, `\C`, true},
	}
	for _, tt := range tests {
		r := newResolver(reg, Options{Rooted: tt.policy})
		out, err := r.ResolveName(ast.NewName(tt.ref, 1), 1, nsScope("x"), false)
		require.NoError(t, err)
		if tt.warn {
			assert.Equal(t, []diag.Kind{diag.UseOfUnqualifiedType}, kinds(out), "%s %s", tt.policy, tt.ref)
		} else {
			assert.Empty(t, out.Findings, "%s %s", tt.policy, tt.ref)
		}
	}
}

func TestAutofixShortensThroughExistingAlias(t *testing.T) {
	r := newResolver(registry(`app\x\B`), Options{AutoFix: true})
	sc := nsScope("app")
	a, _ := sc.Bind("B", qname.Parse(`app\x\B`), 2)

	out, err := r.ResolveName(ast.NewName(`x\B`, 7), 7, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Findings)
	require.Len(t, out.Fixes, 1)
	assert.Equal(t, fix.KindReplace, out.Fixes[0].Kind)
	assert.Equal(t, `x\B`, out.Fixes[0].Search)
	assert.Equal(t, "B", out.Fixes[0].Replacement)
	assert.Equal(t, 7, out.Fixes[0].Line)
	assert.Equal(t, 1, a.UseCount())
}

func TestAutofixShortensNameInCurrentNamespace(t *testing.T) {
	r := newResolver(registry(`app\User`), Options{AutoFix: true, Rooted: RootedMultiSegment})
	sc := nsScope("app")

	out, err := r.ResolveName(ast.NewName(`\app\User`, 3), 3, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Findings)
	require.Len(t, out.Fixes, 1)
	assert.Equal(t, fix.ReplaceSubstring(3, `\app\User`, "User", out.Fixes[0].Reason), out.Fixes[0])
}

func TestAutofixDoesNotShortenWhenAliasShadows(t *testing.T) {
	r := newResolver(registry(`app\User`, `other\User`), Options{AutoFix: true, Rooted: RootedMultiSegment})
	sc := nsScope("app")
	sc.Bind("User", qname.Parse(`other\User`), 2)

	out, err := r.ResolveName(ast.NewName(`\app\User`, 3), 3, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Fixes)
	assert.Equal(t, []diag.Kind{diag.UseOfUnqualifiedType}, kinds(out))
}

func TestAutofixImportsSingleSuggestion(t *testing.T) {
	r := newResolver(registry(`lib\User`), Options{AutoFix: true})
	sc := nsScope("app")

	out, err := r.ResolveName(ast.NewName("User", 9), 9, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Findings)
	assert.Empty(t, out.Fixes)
	require.Len(t, out.Imports, 1)
	assert.Equal(t, `lib\User`, out.Imports[0].Name.String())
	assert.Contains(t, out.Imports[0].Reason, `app\User could not be resolved, assuming lib\User`)
}

func TestDeclinedImportBecomesDiagnostic(t *testing.T) {
	r := newResolver(registry(`lib\User`), Options{AutoFix: true})
	out, err := r.ResolveName(ast.NewName("User", 9), 9, nsScope("app"), true)
	require.NoError(t, err)
	require.Len(t, out.Imports, 1)

	f := r.Declined(out.Imports[0])
	assert.Equal(t, diag.UnableToResolveTypeInComment, f.Kind)
	assert.Equal(t, 9, f.Line)
	assert.Equal(t, "Type 'app\\User' could not be resolved. Perhaps you meant one of these?\n  - lib\\User", f.Message)
}

func TestAutofixRewritesQualifiedUnresolved(t *testing.T) {
	r := newResolver(registry(`lib\User`), Options{AutoFix: true})
	sc := nsScope("app")

	out, err := r.ResolveName(ast.NewName(`old\User`, 9), 9, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Findings, "the rewrite also removes the style warning")
	assert.Empty(t, out.Fixes, "the rewrite travels with the import")
	require.Len(t, out.Imports, 1)
	rw := out.Imports[0].Rewrite
	require.NotNil(t, rw)
	assert.Equal(t, `old\User`, rw.Search)
	assert.Equal(t, "User", rw.Replacement)
}

func TestDeclinedRewriteKeepsStyleWarning(t *testing.T) {
	r := newResolver(registry(`lib\User`), Options{AutoFix: true})
	out, err := r.ResolveName(ast.NewName(`old\User`, 9), 9, nsScope("app"), false)
	require.NoError(t, err)
	require.Len(t, out.Imports, 1)

	fallback := out.Imports[0].Fallback
	require.Len(t, fallback, 2)
	assert.Equal(t, diag.UnableToResolveType, fallback[0].Kind)
	assert.Contains(t, fallback[0].Message, `lib\User`)
	assert.Equal(t, diag.UseOfUnqualifiedType, fallback[1].Kind)
	assert.Equal(t, 9, fallback[1].Line)
}

func TestShortImportHasNoRewrite(t *testing.T) {
	r := newResolver(registry(`lib\User`), Options{AutoFix: true})
	out, err := r.ResolveName(ast.NewName("User", 4), 4, nsScope("app"), true)
	require.NoError(t, err)
	require.Len(t, out.Imports, 1)
	assert.Nil(t, out.Imports[0].Rewrite)
	require.Len(t, out.Imports[0].Fallback, 1)
	assert.Equal(t, diag.UnableToResolveTypeInComment, out.Imports[0].Fallback[0].Kind)
}

func TestAutofixUsesExistingImportOfSuggestion(t *testing.T) {
	r := newResolver(registry(`lib\User`), Options{AutoFix: true})
	sc := nsScope("app")
	a, _ := sc.Bind("User", qname.Parse(`lib\User`), 2)

	out, err := r.ResolveName(ast.NewName(`old\User`, 9), 9, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Findings)
	assert.Empty(t, out.Imports)
	require.Len(t, out.Fixes, 1)
	assert.Equal(t, 1, a.UseCount())
}

func TestAutofixRefusesCollisions(t *testing.T) {
	reg := registry(`lib\User`, `app\User`, `other\User`)
	r := newResolver(oracle.Func{
		Valid:    reg.IsValid,
		Suggests: func(string) []qname.Name { return []qname.Name{qname.Parse(`lib\User`)} },
	}, Options{AutoFix: true})

	// alias User already bound to something else
	sc := nsScope("x")
	sc.Bind("User", qname.Parse(`other\User`), 2)
	out, err := r.ResolveName(ast.NewName(`old\User`, 5), 5, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Imports)
	assert.Equal(t, []diag.Kind{diag.UnableToResolveType, diag.UseOfUnqualifiedType}, kinds(out))

	// a class named User already lives in the current namespace
	sc = nsScope("app")
	out, err = r.ResolveName(ast.NewName(`old\User`, 5), 5, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Imports)
	assert.Contains(t, kinds(out), diag.UnableToResolveType)
	assert.Contains(t, out.Findings[0].Message, `lib\User`)
}

func TestSeveralSuggestionsAreListed(t *testing.T) {
	r := newResolver(registry(`a\User`, `b\User`), Options{AutoFix: true})
	out, err := r.ResolveName(ast.NewName("User", 2), 2, nsScope("app"), false)
	require.NoError(t, err)
	require.Len(t, out.Findings, 1)
	assert.Equal(t, "Type 'app\\User' could not be resolved. Perhaps you meant one of these?\n  - a\\User\n  - b\\User", out.Findings[0].Message)
	assert.Empty(t, out.Imports)
}

func TestSimilarHintsInMessage(t *testing.T) {
	r := newResolver(registry(`lib\Customer`), Options{Hints: 3})
	out, err := r.ResolveName(ast.NewName("Custome", 2), 2, nsScope("app"), false)
	require.NoError(t, err)
	require.Len(t, out.Findings, 1)
	assert.Contains(t, out.Findings[0].Message, `Similar names: lib\Customer`)
	assert.Empty(t, out.Imports)
}

func TestLocallyDeclaredClassIsValid(t *testing.T) {
	r := newResolver(registry(), Options{})
	sc := nsScope("app")
	sc.Declare(qname.Parse(`app\Later`))

	out, err := r.ResolveName(ast.NewName("Later", 3), 3, sc, false)
	require.NoError(t, err)
	assert.Empty(t, out.Findings)
}

func TestParseRootedPolicy(t *testing.T) {
	p, err := ParseRootedPolicy("Multi-Segment")
	require.NoError(t, err)
	assert.Equal(t, RootedMultiSegment, p)
	p, err = ParseRootedPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RootedExempt, p)
	_, err = ParseRootedPolicy("sometimes")
	assert.Error(t, err)
}
