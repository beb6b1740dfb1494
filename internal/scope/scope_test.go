package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/qname"
)

func TestBindKeepsFirstBinding(t *testing.T) {
	s := New()
	s.EnterNamespace(qname.Parse("foo"), 1)

	first, ok := s.Bind("asdf", qname.Parse("asdf"), 2)
	require.True(t, ok)
	prev, ok := s.Bind("ASDF", qname.Parse(`foo\asdf`), 3)
	require.False(t, ok)
	assert.Same(t, first, prev)
	assert.Equal(t, 2, prev.Line)
	assert.Equal(t, `asdf`, prev.Target.String())
	assert.Len(t, s.Aliases(), 1)
}

func TestUseCountMonotonic(t *testing.T) {
	s := New()
	a, _ := s.Bind("B", qname.Parse(`a\B`), 2)
	assert.Equal(t, 0, a.UseCount())
	a.MarkUsed()
	a.MarkUsed()
	assert.Equal(t, 2, a.UseCount())

	got, ok := s.Lookup("b")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestSynthesizedAliasIsUsed(t *testing.T) {
	s := New()
	a, ok := s.Synthesize("Foo", qname.Parse(`x\Foo`), 4)
	require.True(t, ok)
	assert.True(t, a.Synthetic)
	assert.Equal(t, 1, a.UseCount())
	assert.True(t, a.IsDefault())
}

func TestEnterNamespaceResetsBlock(t *testing.T) {
	s := New()
	s.EnterNamespace(qname.Parse("a"), 1)
	s.Bind("X", qname.Parse(`q\X`), 2)
	s.Declare(qname.Parse(`a\Local`))
	s.PushClass(Class{Name: qname.Parse(`a\Local`)})

	s.EnterNamespace(qname.Parse(`b\c`), 10)
	assert.Empty(t, s.Aliases())
	assert.False(t, s.IsDeclared(qname.Parse(`a\Local`)))
	_, ok := s.CurrentClass()
	assert.False(t, ok)
	assert.Equal(t, `b\c`, s.Namespace().String())
	assert.Equal(t, 10, s.NamespaceLine())
	assert.True(t, s.SawNamespace())

	s.Reset()
	assert.False(t, s.SawNamespace())
	assert.False(t, s.InNamespace())
}

func TestQualify(t *testing.T) {
	s := New()
	s.EnterNamespace(qname.Parse("app"), 3)
	assert.Equal(t, `\app\sub\X`, s.Qualify("sub", "X").Text())

	s.EnterGlobal()
	assert.Equal(t, `\X`, s.Qualify("X").Text())
}

func TestClassStack(t *testing.T) {
	s := New()
	s.PushClass(Class{Name: qname.Parse(`a\Outer`)})
	s.PushClass(Class{Name: qname.Parse(`a\Inner`), Base: qname.Parse(`a\Base`)})
	c, ok := s.CurrentClass()
	require.True(t, ok)
	assert.Equal(t, `a\Base`, c.Base.String())
	s.PopClass()
	c, _ = s.CurrentClass()
	assert.Equal(t, `a\Outer`, c.Name.String())
	s.PopClass()
	s.PopClass()
	_, ok = s.CurrentClass()
	assert.False(t, ok)
}
