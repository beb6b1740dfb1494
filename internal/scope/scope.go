// Package scope tracks what is visible while one file is walked: the current
// namespace, the alias table built from import statements, the stack of
// enclosing classes and the classes declared in the current block.
package scope

import (
	"bugfree/internal/qname"
)

// Alias is one import binding.
type Alias struct {
	// Name is the alias as written (explicit `as` name or last segment).
	Name   string
	Target qname.Name
	Line   int
	// Synthetic marks imports added by autofix; they are not organized.
	Synthetic bool

	uses int
}

// UseCount reports how many references resolved through this alias.
func (a *Alias) UseCount() int { return a.uses }

// MarkUsed records one successful resolution. Counts never decrease.
func (a *Alias) MarkUsed() { a.uses++ }

// IsDefault reports whether the alias equals the last segment of its
// target, i.e. no explicit rename was written.
func (a *Alias) IsDefault() bool { return a.Name == a.Target.Last() }

// Class is an enclosing class declaration.
type Class struct {
	Name qname.Name
	// Base is the resolved parent class, zero when there is none.
	Base qname.Name
}

// Scope is mutated only by the traversal of one file.
type Scope struct {
	namespace    qname.Name
	namespaceSet bool
	sawNamespace bool
	nsLine       int

	aliases map[string]*Alias
	order   []*Alias

	classes []Class
	local   map[string]struct{}
}

func New() *Scope {
	s := &Scope{}
	s.Reset()
	return s
}

// Reset prepares the scope for a new file.
func (s *Scope) Reset() {
	s.sawNamespace = false
	s.resetBlock()
}

func (s *Scope) resetBlock() {
	s.namespace = qname.Name{}
	s.namespaceSet = false
	s.nsLine = 0
	s.aliases = make(map[string]*Alias)
	s.order = nil
	s.classes = nil
	s.local = make(map[string]struct{})
}

// EnterNamespace starts a namespace block. Aliases, local declarations and
// the class stack of the previous block are dropped.
func (s *Scope) EnterNamespace(ns qname.Name, line int) {
	s.resetBlock()
	s.namespace = qname.New(true, ns.Segments()...)
	s.namespaceSet = true
	s.sawNamespace = true
	s.nsLine = line
}

// EnterGlobal starts a block outside any namespace declaration.
func (s *Scope) EnterGlobal() {
	s.resetBlock()
}

// Namespace is the current namespace, zero for the global one.
func (s *Scope) Namespace() qname.Name { return s.namespace }

// NamespaceLine is the line of the current namespace declaration, 0 when
// the block has none.
func (s *Scope) NamespaceLine() int { return s.nsLine }

// InNamespace reports whether the current block has a namespace statement.
func (s *Scope) InNamespace() bool { return s.namespaceSet }

// SawNamespace reports whether any namespace was declared in this file.
func (s *Scope) SawNamespace() bool { return s.sawNamespace }

// Qualify prefixes a relative name with the current namespace.
func (s *Scope) Qualify(segments ...string) qname.Name {
	return s.namespace.Join(segments...).AsRooted()
}

// Bind registers an alias. When the key is already bound the existing entry
// is returned with ok=false and the table is left unchanged.
func (s *Scope) Bind(alias string, target qname.Name, line int) (entry *Alias, ok bool) {
	key := qname.Fold(alias)
	if prev, dup := s.aliases[key]; dup {
		return prev, false
	}
	a := &Alias{Name: alias, Target: qname.New(true, target.Segments()...), Line: line}
	s.aliases[key] = a
	s.order = append(s.order, a)
	return a, true
}

// Synthesize binds an alias produced by autofix. It starts out used.
func (s *Scope) Synthesize(alias string, target qname.Name, line int) (*Alias, bool) {
	a, ok := s.Bind(alias, target, line)
	if ok {
		a.Synthetic = true
		a.MarkUsed()
	}
	return a, ok
}

// Lookup finds an alias by key, case-insensitively.
func (s *Scope) Lookup(alias string) (*Alias, bool) {
	a, ok := s.aliases[qname.Fold(alias)]
	return a, ok
}

// Aliases returns the bindings in declaration order.
func (s *Scope) Aliases() []*Alias {
	return append([]*Alias(nil), s.order...)
}

// Declare records a class declared in the current block.
func (s *Scope) Declare(name qname.Name) {
	s.local[name.String()] = struct{}{}
}

// IsDeclared reports whether name is declared in the current block.
func (s *Scope) IsDeclared(name qname.Name) bool {
	_, ok := s.local[name.String()]
	return ok
}

func (s *Scope) PushClass(c Class) {
	s.classes = append(s.classes, c)
}

func (s *Scope) PopClass() {
	if len(s.classes) > 0 {
		s.classes = s.classes[:len(s.classes)-1]
	}
}

// CurrentClass returns the innermost enclosing class.
func (s *Scope) CurrentClass() (Class, bool) {
	if len(s.classes) == 0 {
		return Class{}, false
	}
	return s.classes[len(s.classes)-1], true
}
