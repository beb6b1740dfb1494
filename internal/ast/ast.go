// Package ast is the syntax tree the checker consumes. It carries only what
// name validation needs: declarations, import statements, type references
// and docblock annotations, each with its source line.
package ast

import "bugfree/internal/qname"

// Kind is the closed set of node kinds.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindNamespace opens a namespace block; the block body is Children.
	KindNamespace
	// KindUse is one import statement with one or more clauses.
	KindUse
	// KindClass covers classes, interfaces, traits and enums. Members are
	// Children.
	KindClass
	// KindTraitUse lists the traits pulled into a class body.
	KindTraitUse
	// KindFunction is a function or method; Types holds parameter and
	// return types.
	KindFunction
	// KindProperty is a property declaration with an optional type.
	KindProperty
	// KindTypeRef is any other reference to a class name: new, static
	// access, instanceof, catch.
	KindTypeRef
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindNamespace: "namespace",
	KindUse:       "use",
	KindClass:     "class",
	KindTraitUse:  "trait-use",
	KindFunction:  "function",
	KindProperty:  "property",
	KindTypeRef:   "type-ref",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// File is one parsed source file.
type File struct {
	Path  string
	Nodes []*Node
	// Errors are syntax errors reported by the front-end, as 1-based lines.
	Errors []SyntaxError
}

// SyntaxError is a front-end parse failure.
type SyntaxError struct {
	Line    int
	Message string
}

// Node is a tree node. Which fields are set depends on Kind.
type Node struct {
	Kind Kind
	Line int

	// Name is the namespace name (KindNamespace, zero for the global block).
	Name *Name
	// Ident is the declared short name of a class.
	Ident string

	Extends    []*Name
	Implements []*Name
	Types      []*Name
	Uses       []UseClause

	Doc      *DocBlock
	Children []*Node
}

// Name is a name reference as written in the source.
type Name struct {
	Segments       []string
	FullyQualified bool
	Line           int
	// Text is the exact source spelling, used as the search string of
	// rewrite fixes.
	Text string
}

// NewName builds a Name from its written form.
func NewName(text string, line int) *Name {
	q := qname.Parse(text)
	return &Name{
		Segments:       q.Segments(),
		FullyQualified: q.Rooted(),
		Line:           line,
		Text:           text,
	}
}

// QName converts to a canonical qualified name.
func (n *Name) QName() qname.Name {
	return qname.New(n.FullyQualified, n.Segments...)
}

// Written returns the source spelling, rebuilt from segments when Text is
// empty.
func (n *Name) Written() string {
	if n.Text != "" {
		return n.Text
	}
	return n.QName().Text()
}

// UseClause is one entry of an import statement.
type UseClause struct {
	Name  *Name
	Alias string
	Line  int
	// Malformed marks an entry the front-end could not split into a name
	// and an alias.
	Malformed bool
}

// EffectiveAlias returns the explicit alias or the last segment.
func (u UseClause) EffectiveAlias() string {
	if u.Alias != "" {
		return u.Alias
	}
	if u.Name == nil || len(u.Name.Segments) == 0 {
		return ""
	}
	return u.Name.Segments[len(u.Name.Segments)-1]
}

// DocBlock holds the annotations extracted from a `/** */` comment.
type DocBlock struct {
	// Line is the line the comment starts on.
	Line int
	Tags []DocTag
}

// DocTag is one `@tag` occurrence.
type DocTag struct {
	Name string
	// Offset is the 0-based line offset within the comment.
	Offset int
	// Value is the remainder of the line after the tag name.
	Value string
	// Annotation is set for doctrine-style annotations (`@ORM\Entity(...)`),
	// whose name is itself a class reference.
	Annotation bool
	// Refs are class names found in annotation arguments (`Foo::BAR`).
	Refs []DocRef
}

// DocRef is a class name token inside a docblock.
type DocRef struct {
	Text   string
	Offset int
}
