package ast

// Inspect walks nodes depth-first in source order. Returning false from fn
// skips the children of that node.
func Inspect(nodes []*Node, fn func(*Node) bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if fn(n) {
			Inspect(n.Children, fn)
		}
	}
}

// Blocks splits the top level of a file into namespace blocks. Runs of
// top-level nodes outside any namespace become one block with a nil head.
func Blocks(f *File) []Block {
	var (
		out     []Block
		pending []*Node
	)
	flush := func() {
		if len(pending) > 0 {
			out = append(out, Block{Body: pending})
			pending = nil
		}
	}
	for _, n := range f.Nodes {
		if n == nil {
			continue
		}
		if n.Kind == KindNamespace {
			flush()
			out = append(out, Block{Head: n, Body: n.Children})
			continue
		}
		pending = append(pending, n)
	}
	flush()
	return out
}

// Block is one namespace block of a file.
type Block struct {
	Head *Node
	Body []*Node
}
