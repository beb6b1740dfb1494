package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewName(t *testing.T) {
	n := NewName(`\Foo\\Bar`, 7)
	assert.Equal(t, []string{"Foo", "Bar"}, n.Segments)
	assert.True(t, n.FullyQualified)
	assert.Equal(t, `\Foo\\Bar`, n.Written())
	assert.Equal(t, `\Foo\Bar`, n.QName().Text())
}

func TestEffectiveAlias(t *testing.T) {
	assert.Equal(t, "Bar", UseClause{Name: NewName(`Foo\Bar`, 1)}.EffectiveAlias())
	assert.Equal(t, "B", UseClause{Name: NewName(`Foo\Bar`, 1), Alias: "B"}.EffectiveAlias())
	assert.Equal(t, "", UseClause{}.EffectiveAlias())
}

func TestBlocksGroupsLooseNodes(t *testing.T) {
	use := &Node{Kind: KindUse, Line: 2}
	ns1 := &Node{Kind: KindNamespace, Line: 3, Name: NewName("a", 3)}
	ns2 := &Node{Kind: KindNamespace, Line: 9, Name: NewName("b", 9)}
	f := &File{Nodes: []*Node{use, ns1, ns2}}

	blocks := Blocks(f)
	require.Len(t, blocks, 3)
	assert.Nil(t, blocks[0].Head)
	assert.Equal(t, []*Node{use}, blocks[0].Body)
	assert.Same(t, ns1, blocks[1].Head)
	assert.Same(t, ns2, blocks[2].Head)
}

func TestInspectSkipsChildren(t *testing.T) {
	inner := &Node{Kind: KindFunction}
	class := &Node{Kind: KindClass, Children: []*Node{inner}}
	var seen []Kind
	Inspect([]*Node{class}, func(n *Node) bool {
		seen = append(seen, n.Kind)
		return false
	})
	assert.Equal(t, []Kind{KindClass}, seen)
}
