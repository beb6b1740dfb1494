package phpparse

import (
	"bugfree/internal/ast"
	"bugfree/internal/qname"
)

// Declared lists the named classes, interfaces, traits and enums a file
// declares, fully qualified. Anonymous classes are skipped.
func Declared(f *ast.File) []qname.Name {
	var out []qname.Name
	for _, b := range ast.Blocks(f) {
		ns := qname.Name{}
		if b.Head != nil && b.Head.Name != nil {
			ns = b.Head.Name.QName()
		}
		ast.Inspect(b.Body, func(n *ast.Node) bool {
			if n.Kind == ast.KindClass && n.Ident != "" {
				out = append(out, ns.Join(n.Ident).AsRooted())
			}
			return true
		})
	}
	return out
}
