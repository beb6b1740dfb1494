package phpparse

import (
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"bugfree/internal/ast"
	"bugfree/internal/docblock"
)

type builder struct {
	src []byte
}

// Declarations a preceding docblock belongs to.
var documented = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"trait_declaration":     true,
	"enum_declaration":      true,
	"function_definition":   true,
	"method_declaration":    true,
	"property_declaration":  true,
	"namespace_definition":  true,
}

var classLike = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"trait_declaration":     true,
	"enum_declaration":      true,
}

var functionLike = map[string]bool{
	"function_definition":                    true,
	"method_declaration":                     true,
	"anonymous_function":                     true,
	"anonymous_function_creation_expression": true,
	"arrow_function":                         true,
}

func line(n *sitter.Node) int {
	l, err := safecast.Conv[int](n.StartPoint().Row)
	if err != nil {
		return 0
	}
	return l + 1
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

// program splits the top level into namespace blocks. An unbraced
// `namespace foo;` owns every following statement up to the next
// namespace statement.
func (b *builder) program(root *sitter.Node) []*ast.Node {
	var (
		out     []*ast.Node
		current *ast.Node
		seenNS  bool
	)
	hasNS := false
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if root.NamedChild(i).Type() == "namespace_definition" {
			hasNS = true
			break
		}
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "namespace_definition" {
			seenNS = true
			ns := b.namespace(child)
			out = append(out, ns)
			current = nil
			if child.ChildByFieldName("body") == nil {
				current = ns
			}
			continue
		}
		// шапка файла до первого namespace ни к чему не относится
		if hasNS && !seenNS && b.isDoc(child) {
			continue
		}
		nodes := b.statement(child)
		if current != nil {
			current.Children = append(current.Children, nodes...)
		} else {
			out = append(out, nodes...)
		}
	}
	return out
}

func (b *builder) namespace(n *sitter.Node) *ast.Node {
	ns := &ast.Node{Kind: ast.KindNamespace, Line: line(n), Doc: b.docFor(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		ns.Name = b.name(name)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		ns.Children = b.children(body)
	}
	return ns
}

// children lowers every named child of n in order.
func (b *builder) children(n *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, b.statement(n.NamedChild(i))...)
	}
	return out
}

// statement lowers one concrete node into zero or more ast nodes.
func (b *builder) statement(n *sitter.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	t := n.Type()
	switch {
	case t == "comment":
		if !b.isDoc(n) || b.attached(n) {
			return nil
		}
		return []*ast.Node{{Kind: ast.KindTypeRef, Line: line(n), Doc: docblock.Block(b.text(n), line(n))}}

	case t == "namespace_use_declaration":
		if u := b.use(n); u != nil {
			return []*ast.Node{u}
		}
		return nil

	case classLike[t]:
		return []*ast.Node{b.class(n)}

	case functionLike[t]:
		return []*ast.Node{b.function(n)}

	case t == "property_declaration":
		out := []*ast.Node{{
			Kind:  ast.KindProperty,
			Line:  line(n),
			Doc:   b.docFor(n),
			Types: b.types(n.ChildByFieldName("type")),
		}}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if el := n.NamedChild(i); el.Type() == "property_element" {
				out = append(out, b.children(el)...)
			}
		}
		return out

	case t == "use_declaration":
		// use Trait; внутри тела класса
		return []*ast.Node{{Kind: ast.KindTraitUse, Line: line(n), Types: b.directNames(n)}}

	case t == "anonymous_class":
		return []*ast.Node{b.class(n)}
	}

	refs := b.references(n)
	if len(refs) > 0 {
		return append(refs, b.children(n)...)
	}
	return b.children(n)
}

// references returns the class names an expression node mentions itself,
// not counting its children.
func (b *builder) references(n *sitter.Node) []*ast.Node {
	var names []*ast.Name
	switch n.Type() {
	case "object_creation_expression":
		names = b.directNames(n)
	case "class_constant_access_expression":
		if first := n.NamedChild(0); first != nil && isName(first) {
			names = append(names, b.name(first))
		}
	case "scoped_call_expression", "scoped_property_access_expression":
		if scope := n.ChildByFieldName("scope"); scope != nil && isName(scope) {
			names = append(names, b.name(scope))
		}
	case "binary_expression":
		if op := n.ChildByFieldName("operator"); op != nil && strings.EqualFold(b.text(op), "instanceof") {
			if right := n.ChildByFieldName("right"); right != nil && isName(right) {
				names = append(names, b.name(right))
			}
		}
	case "catch_clause":
		names = b.types(n.ChildByFieldName("type"))
	}
	if len(names) == 0 {
		return nil
	}
	return []*ast.Node{{Kind: ast.KindTypeRef, Line: line(n), Types: names}}
}

func (b *builder) class(n *sitter.Node) *ast.Node {
	cls := &ast.Node{Kind: ast.KindClass, Line: line(n), Doc: b.docFor(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Ident = b.text(name)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "base_clause":
			cls.Extends = append(cls.Extends, b.directNames(child)...)
		case "class_interface_clause":
			cls.Implements = append(cls.Implements, b.directNames(child)...)
		case "declaration_list", "enum_declaration_list":
			cls.Children = b.children(child)
		case "arguments":
			cls.Children = append(cls.Children, b.children(child)...)
		}
	}
	return cls
}

func (b *builder) function(n *sitter.Node) *ast.Node {
	fn := &ast.Node{Kind: ast.KindFunction, Line: line(n), Doc: b.docFor(n)}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			fn.Types = append(fn.Types, b.types(p.ChildByFieldName("type"))...)
			// значения по умолчанию тоже могут ссылаться на классы
			if def := p.ChildByFieldName("default_value"); def != nil {
				fn.Children = append(fn.Children, b.statement(def)...)
			}
		}
	}
	fn.Types = append(fn.Types, b.types(n.ChildByFieldName("return_type"))...)
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Children = append(fn.Children, b.statement(body)...)
	}
	return fn
}

// use lowers an import statement. Function and constant imports are not
// class references and yield nil.
func (b *builder) use(n *sitter.Node) *ast.Node {
	if isFunctionOrConst(n) {
		return nil
	}
	u := &ast.Node{Kind: ast.KindUse, Line: line(n)}

	prefix := ""
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "namespace_name", "namespace_name_as_prefix":
			prefix = strings.TrimRight(compact(b.text(child)), `\`)
		case "namespace_use_clause":
			u.Uses = append(u.Uses, b.useClause(child, ""))
		case "namespace_use_group":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				clause := child.NamedChild(j)
				if clause.Type() == "comment" || isFunctionOrConst(clause) {
					continue
				}
				u.Uses = append(u.Uses, b.useClause(clause, prefix))
			}
		case "comment":
		default:
			u.Uses = append(u.Uses, ast.UseClause{Line: line(child), Malformed: true})
		}
	}
	if len(u.Uses) == 0 {
		return nil
	}
	return u
}

func (b *builder) useClause(n *sitter.Node, prefix string) ast.UseClause {
	clause := ast.UseClause{Line: line(n)}
	if n.IsError() || n.HasError() {
		clause.Malformed = true
		return clause
	}

	var target *sitter.Node
	sawAs := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch {
		case child.Type() == "as":
			sawAs = true
		case child.Type() == "namespace_aliasing_clause":
			if alias := lastNamed(child); alias != nil {
				clause.Alias = b.text(alias)
			}
		case isName(child) && sawAs:
			clause.Alias = b.text(child)
		case (isName(child) || child.Type() == "namespace_name") && target == nil:
			target = child
		}
	}
	if target == nil {
		clause.Malformed = true
		return clause
	}
	text := compact(b.text(target))
	if prefix != "" {
		text = prefix + `\` + strings.TrimLeft(text, `\`)
	}
	clause.Name = ast.NewName(text, clause.Line)
	return clause
}

func isFunctionOrConst(n *sitter.Node) bool {
	if t := n.ChildByFieldName("type"); t != nil {
		switch t.Type() {
		case "function", "const":
			return true
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "function", "const":
			return true
		}
	}
	return false
}

// types collects the class names of a type expression. Primitive types are
// skipped here, pseudo types are left to the resolver.
func (b *builder) types(n *sitter.Node) []*ast.Name {
	if n == nil {
		return nil
	}
	if isName(n) {
		return []*ast.Name{b.name(n)}
	}
	if n.Type() == "primitive_type" || n.Type() == "bottom_type" {
		return nil
	}
	var out []*ast.Name
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, b.types(n.NamedChild(i))...)
	}
	return out
}

// directNames returns the name children of n, looking through named_type
// wrappers.
func (b *builder) directNames(n *sitter.Node) []*ast.Name {
	var out []*ast.Name
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch {
		case isName(child):
			out = append(out, b.name(child))
		case child.Type() == "named_type":
			out = append(out, b.types(child)...)
		}
	}
	return out
}

func isName(n *sitter.Node) bool {
	switch n.Type() {
	case "name", "qualified_name", "relative_scope":
		return true
	}
	return false
}

func (b *builder) name(n *sitter.Node) *ast.Name {
	text := compact(b.text(n))
	// namespace\Foo - явная ссылка на текущий namespace
	if rest, ok := strings.CutPrefix(strings.ToLower(text), `namespace\`); ok {
		text = text[len(text)-len(rest):]
	}
	return ast.NewName(text, line(n))
}

func (b *builder) isDoc(n *sitter.Node) bool {
	return n.Type() == "comment" && docblock.IsDocComment(b.text(n))
}

// attached reports whether a doc comment is picked up by the declaration
// that follows it.
func (b *builder) attached(n *sitter.Node) bool {
	next := n.NextNamedSibling()
	return next != nil && documented[next.Type()]
}

// docFor returns the docblock right before a declaration.
func (b *builder) docFor(n *sitter.Node) *ast.DocBlock {
	prev := n.PrevNamedSibling()
	if prev == nil || !b.isDoc(prev) {
		return nil
	}
	return docblock.Block(b.text(prev), line(prev))
}

func lastNamed(n *sitter.Node) *sitter.Node {
	if c := int(n.NamedChildCount()); c > 0 {
		return n.NamedChild(c - 1)
	}
	return nil
}

// compact drops whitespace and comments that PHP allows between name
// segments.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
