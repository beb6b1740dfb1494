package docblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/ast"
)

func names(tags []ast.DocTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
		for _, r := range t.Refs {
			out = append(out, r.Text)
		}
	}
	return out
}

func TestParsePlainTags(t *testing.T) {
	tags := Parse("/** @param string $foo a foo */")
	require.Len(t, tags, 1)
	assert.Equal(t, ast.DocTag{Name: "param", Value: "string $foo a foo"}, tags[0])

	tags = Parse(`/**
	  * Foo bar baz This is some commentary.
	  *
	  * @param string $foo a foo
	  * @param turtle $t a turtle
	  * @return string
	  */`)
	require.Len(t, tags, 3)
	assert.Equal(t, ast.DocTag{Name: "param", Offset: 3, Value: "string $foo a foo"}, tags[0])
	assert.Equal(t, ast.DocTag{Name: "param", Offset: 4, Value: "turtle $t a turtle"}, tags[1])
	assert.Equal(t, ast.DocTag{Name: "return", Offset: 5, Value: "string"}, tags[2])
}

func TestParseKeepsMisspelledTags(t *testing.T) {
	tags := Parse("/** @returns Foo */")
	require.Len(t, tags, 1)
	assert.Equal(t, "returns", tags[0].Name)
	assert.False(t, tags[0].Annotation)
	assert.Equal(t, "Foo", tags[0].Value)
}

func TestParseIgnoresEmailAddresses(t *testing.T) {
	tags := Parse("/**\n * @author Jane <jane@example.com>\n */")
	require.Len(t, tags, 1)
	assert.Equal(t, "author", tags[0].Name)
}

func TestParseDoctrineAnnotations(t *testing.T) {
	tags := Parse(`/**
	   * @Entity
	   * @InheritanceType("JOINED")
	   * @DiscriminatorColumn(name="discr", type="string")
	   * @DiscriminatorMap({"person" = "Person", "employee" = "Employee"})
	   */`)
	assert.Equal(t, []string{"Entity", "InheritanceType", "DiscriminatorColumn", "DiscriminatorMap"}, names(tags))
	for _, tag := range tags {
		assert.True(t, tag.Annotation, tag.Name)
	}
	assert.Equal(t, 4, tags[3].Offset)
}

func TestParseNestedAnnotations(t *testing.T) {
	tags := Parse(`/**
	     * Owning Side
	     *
	     * @ManyToMany(targetEntity="Group", inversedBy="features")
	     * @JoinTable(name="user_groups",
	     *      joinColumns={@JoinColumn(name="user_id", referencedColumnName="id")},
	     *      inverseJoinColumns={@JoinColumn(name="group_id", referencedColumnName="id")}
	     *      )
	     */`)
	assert.Equal(t, []string{"ManyToMany", "JoinTable", "JoinColumn", "JoinColumn"}, names(tags))
	assert.Equal(t, 5, tags[2].Offset)
	assert.Equal(t, 6, tags[3].Offset)
}

func TestParseConstantReferences(t *testing.T) {
	tags := Parse(`/**
	     * @Foo(PHP_EOL)
	     * @Bar(Bar::FOO)
	     * @Foo({SomeClass1::FOO, SomeClass3::BAR})
	     * @Bar({SomeClass2::FOO_KEY = SomeClass4::BAR_VALUE})
	     */`)
	assert.Equal(t,
		[]string{"Foo", "Bar", "Bar", "Foo", "SomeClass1", "SomeClass3", "Bar", "SomeClass2", "SomeClass4"},
		names(tags))
	require.Len(t, tags[2].Refs, 2)
	assert.Equal(t, ast.DocRef{Text: "SomeClass1", Offset: 3}, tags[2].Refs[0])
}

func TestParseNamespacedAnnotation(t *testing.T) {
	tags := Parse(`/** @ORM\Table(name="users") */`)
	require.Len(t, tags, 1)
	assert.Equal(t, `ORM\Table`, tags[0].Name)
	assert.True(t, tags[0].Annotation)
}

func TestNotADocblock(t *testing.T) {
	assert.Nil(t, Parse("/* @param string $x */"))
	assert.Nil(t, Block("// @var Foo", 3))
	b := Block("/** @var Foo */", 3)
	require.NotNil(t, b)
	assert.Equal(t, 3, b.Line)
}

func TestIsAnnotation(t *testing.T) {
	assert.True(t, IsAnnotation("Entity"))
	assert.True(t, IsAnnotation(`orm\Entity`))
	assert.False(t, IsAnnotation("dataProvider"))
	assert.False(t, IsAnnotation("Param"))
	assert.False(t, IsAnnotation("something"))
	assert.False(t, IsAnnotation(""))
}
