package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLevelsCoverEveryKind(t *testing.T) {
	levels := DefaultLevels()
	for _, k := range Kinds() {
		assert.NotPanics(t, func() { levels.Lookup(k) }, k.Key())
	}
	assert.Equal(t, SevError, levels.Lookup(UnableToResolveType))
	assert.Equal(t, SevWarning, levels.Lookup(UnusedUse))
}

func TestLookupUnknownKindPanics(t *testing.T) {
	levels := Levels{UnusedUse: SevWarning}
	assert.Panics(t, func() { levels.Lookup(DuplicateAlias) })
}

func TestSinkDropsSuppressed(t *testing.T) {
	levels := DefaultLevels().With(UnusedUse, SevSuppress)
	s := NewSink("a.php", levels)
	s.Report(UnusedUse, 3, "unused")
	s.Report(DuplicateAlias, 4, "dup")

	diags := s.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, DuplicateAlias, diags[0].Kind)
	assert.Equal(t, SevError, diags[0].Severity)
	assert.Equal(t, "a.php:4 dup", diags[0].Formatted())
}

func TestSinkPanicsOnMissingLevel(t *testing.T) {
	s := NewSink("a.php", Levels{UnusedUse: SevWarning})
	assert.Panics(t, func() { s.Report(ParseError, 1, "boom") })
}

func TestParseKindAndSeverity(t *testing.T) {
	k, ok := ParseKind("UnusedUse")
	require.True(t, ok)
	assert.Equal(t, UnusedUse, k)

	_, ok = ParseKind("nope")
	assert.False(t, ok)

	sev, err := ParseSeverity("Warning")
	require.NoError(t, err)
	assert.Equal(t, SevWarning, sev)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestBagLimitAndCounts(t *testing.T) {
	b := NewBag(2)
	assert.True(t, b.Add(New(SevWarning, UnusedUse, "f", 1, "a")))
	assert.True(t, b.Add(NewError(DuplicateAlias, "f", 2, "b")))
	assert.False(t, b.Add(NewError(DuplicateAlias, "f", 3, "c")))
	assert.Zero(t, b.Extend([]Diagnostic{NewError(DuplicateAlias, "f", 4, "d")}))

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, b.Dropped())
	assert.Equal(t, 1, b.Count(SevError))
	assert.Equal(t, 1, b.Count(SevWarning))
}

func TestBagSort(t *testing.T) {
	b := NewBag(0)
	kept := b.Extend([]Diagnostic{
		New(SevWarning, UnusedUse, "b.php", 2, "x"),
		New(SevWarning, UnusedUse, "a.php", 5, "y"),
		New(SevError, UnableToResolveType, "a.php", 5, "z"),
	})
	assert.Equal(t, 3, kept)
	b.Sort()

	got := FormatGoldenDiagnostics(b.Items())
	want := "a.php:5 ERROR unableToResolveType: z\n" +
		"a.php:5 WARNING unusedUse: y\n" +
		"b.php:2 WARNING unusedUse: x"
	assert.Equal(t, want, got)
	assert.Zero(t, b.Dropped())
}

func TestFileLevelLocator(t *testing.T) {
	d := NewError(MissingNamespace, "x.php", 0, "missing")
	assert.Equal(t, "x.php missing", d.Formatted())
	assert.Equal(t, "BF0009", d.Kind.ID())
}
