package driver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bugfree/internal/config"
	"bugfree/internal/oracle"
	"bugfree/internal/qname"
)

// BuildOracle assembles the existence oracle a run checks against: one
// registry of builtins, class lists and indexed classes, followed by the
// directory layout of the configured roots.
func BuildOracle(cfg *config.Config, declared []qname.Name) (oracle.Oracle, error) {
	var regs []*oracle.Registry
	if cfg.Oracle.Builtins {
		regs = append(regs, oracle.Builtins())
	}
	if len(cfg.Oracle.ClassLists) > 0 {
		paths := make([]string, len(cfg.Oracle.ClassLists))
		for i, p := range cfg.Oracle.ClassLists {
			paths[i] = cfg.Abs(p)
		}
		lists, err := oracle.LoadClassLists(paths...)
		if err != nil {
			return nil, err
		}
		regs = append(regs, lists)
	}
	if len(declared) > 0 {
		regs = append(regs, oracle.NewRegistry(declared...))
	}

	chain := oracle.Chain{oracle.Merge(regs...)}
	if roots := layoutRoots(cfg); len(roots) > 0 {
		chain = append(chain, oracle.NewLayout(os.DirFS(cfg.Dir()), roots...))
	}
	return chain, nil
}

// layoutRoots turns the [oracle.roots] table into Layout roots, longest
// prefix first so the most specific mapping wins.
func layoutRoots(cfg *config.Config) []oracle.Root {
	roots := make([]oracle.Root, 0, len(cfg.Oracle.Roots))
	for prefix, dir := range cfg.Oracle.Roots {
		if filepath.IsAbs(dir) {
			// DirFS не принимает абсолютные пути
			rel, err := filepath.Rel(cfg.Dir(), dir)
			if err != nil || strings.HasPrefix(rel, "..") {
				continue
			}
			dir = rel
		}
		roots = append(roots, oracle.Root{Prefix: qname.Parse(prefix), Dir: filepath.ToSlash(dir)})
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Prefix.Len() != roots[j].Prefix.Len() {
			return roots[i].Prefix.Len() > roots[j].Prefix.Len()
		}
		return roots[i].Prefix.String() < roots[j].Prefix.String()
	})
	return roots
}
