package oracle

import (
	"io/fs"
	"path"

	"bugfree/internal/qname"
)

// Root maps a namespace prefix onto a directory of an fs.FS. An empty
// prefix maps the whole namespace tree (PSR-0 style).
type Root struct {
	Prefix qname.Name
	Dir    string
}

// Layout treats namespaces as directories and classes as `<Name>.php`
// files below a set of roots.
type Layout struct {
	fsys  fs.FS
	roots []Root
}

// NewLayout builds a directory-layout oracle. Dir values are slash
// separated paths inside fsys.
func NewLayout(fsys fs.FS, roots ...Root) *Layout {
	if len(roots) == 0 {
		roots = []Root{{Dir: "."}}
	}
	return &Layout{fsys: fsys, roots: append([]Root(nil), roots...)}
}

func (l *Layout) IsValid(name qname.Name) bool {
	if name.IsZero() {
		return false
	}
	for _, root := range l.roots {
		rel, ok := trimPrefix(name, root.Prefix)
		if !ok {
			continue
		}
		if len(rel) == 0 {
			if isDir(l.fsys, cleanDir(root.Dir)) {
				return true
			}
			continue
		}
		p := path.Join(append([]string{cleanDir(root.Dir)}, rel...)...)
		if isDir(l.fsys, p) || isFile(l.fsys, p+".php") {
			return true
		}
	}
	return false
}

// Suggest is not supported by a pure layout check; an index of declared
// classes answers it instead.
func (l *Layout) Suggest(string) []qname.Name { return nil }

func trimPrefix(name, prefix qname.Name) ([]string, bool) {
	segs := name.Segments()
	pre := prefix.Segments()
	if len(pre) > len(segs) {
		return nil, false
	}
	for i, s := range pre {
		if segs[i] != s {
			return nil, false
		}
	}
	return segs[len(pre):], true
}

func cleanDir(dir string) string {
	if dir == "" {
		return "."
	}
	return path.Clean(dir)
}

func isDir(fsys fs.FS, p string) bool {
	info, err := fs.Stat(fsys, p)
	return err == nil && info.IsDir()
}

func isFile(fsys fs.FS, p string) bool {
	info, err := fs.Stat(fsys, p)
	return err == nil && info.Mode().IsRegular()
}
