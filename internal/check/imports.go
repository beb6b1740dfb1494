package check

import (
	"fmt"
	"sort"

	"bugfree/internal/ast"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/imports"
	"bugfree/internal/resolve"
)

const disorganizedReason = "Uses are not organized"

func (c *Checker) use(n *ast.Node) error {
	if len(n.Uses) > 1 {
		c.sink.Report(diag.MultiStatementUse, n.Line, "Multiple uses in one statement is discouraged")
		c.grouped = true
	}
	if len(n.Uses) == 1 && (n.Uses[0].Line == 0 || n.Uses[0].Line == n.Line) {
		c.whole[n.Line]++
	}

	for _, u := range n.Uses {
		line := u.Line
		if line == 0 {
			line = n.Line
		}
		if u.Malformed || u.Name == nil || len(u.Name.Segments) == 0 {
			c.sink.Report(diag.MalformedUse, line, "Malformed use statement")
			return nil
		}

		target := u.Name.QName().AsRooted()
		if !c.res.IsValid(target, c.scope) {
			c.sink.Report(diag.UnableToResolveUse, line, fmt.Sprintf("Use '%s' could not be resolved", target.Text()))
		}

		alias := u.EffectiveAlias()
		if prev, ok := c.scope.Bind(alias, target, line); !ok {
			c.sink.Report(diag.DuplicateAlias, line, fmt.Sprintf("Alias '%s' is already in use on line %d", alias, prev.Line))
		}
		c.decls = append(c.decls, imports.Declaration{Name: target, Alias: u.Alias, Line: line})
	}
	return nil
}

// addUse queues an import requested by the resolver. Its line is decided
// when the block closes; the alias is visible right away.
func (c *Checker) addUse(imp resolve.Import) {
	if a, ok := c.scope.Lookup(imp.Name.Last()); ok {
		if a.Target.Equal(imp.Name) {
			a.MarkUsed()
		}
		return
	}
	c.adds = append(c.adds, imp)
	c.scope.Synthesize(imp.Name.Last(), imp.Name, imp.Line)
}

// closeBlock runs the end-of-block import checks: ordering, unused and
// redundant imports, then the queued insertions.
func (c *Checker) closeBlock() {
	autofix := c.res.AutoFix()

	plan := imports.Plan{}
	var canonical []imports.Declaration
	if !c.grouped && distinctLines(c.decls) {
		org := imports.Organize(c.decls)
		canonical = org.Canonical()
		if !org.IsOrganized() {
			plan = org.Plan()
			if autofix {
				for _, s := range plan.Swaps {
					c.fixes.Add(fix.SwapLines(s.From, s.To, disorganizedReason))
				}
			} else {
				c.reportMovements(plan)
			}
		}
	}

	var removed []int
	for _, a := range c.scope.Aliases() {
		if a.Synthetic {
			continue
		}
		msg := ""
		switch {
		case a.UseCount() == 0:
			msg = fmt.Sprintf("Use '%s' is not being used", a.Target.String())
		case a.Target.InNamespace(c.scope.Namespace()) && a.Target.Last() == a.Name:
			msg = fmt.Sprintf("Use '%s' is automatically included as it is in the same namespace", a.Target.String())
		default:
			continue
		}

		if autofix && c.lineEdits && c.whole[a.Line] == 1 {
			line := plan.Moved(a.Line)
			c.fixes.Add(fix.RemoveLine(line, msg))
			removed = append(removed, line)
			continue
		}
		c.sink.Report(diag.UnusedUse, a.Line, msg)
	}

	c.insertUses(canonical, removed)
}

// insertUses turns the queued imports into insertions. When the block can
// be organized each import lands at its sorted position among the imports
// that survive, so a second run finds nothing to reorder; otherwise they
// follow the last import. A block without imports gets them two lines below
// the namespace statement, after a blank separator.
func (c *Checker) insertUses(canonical []imports.Declaration, removed []int) {
	if len(c.adds) == 0 {
		return
	}
	gone := make(map[int]struct{}, len(removed))
	for _, r := range removed {
		gone[r] = struct{}{}
	}

	adds := make([]imports.Declaration, len(c.adds))
	for i, imp := range c.adds {
		adds[i] = imports.Declaration{Name: imp.Name}
	}
	reasons := make(map[string]string, len(c.adds))
	for _, imp := range c.adds {
		reasons[imp.Name.String()] = imp.Reason
	}
	if !c.grouped && distinctLines(c.decls) {
		sort.SliceStable(adds, func(i, j int) bool { return imports.Compare(adds[i], adds[j]) < 0 })
	}

	// canonical[i] ends up on the line of the i-th declaration
	slots := make([]int, len(c.decls))
	last := 0
	for i, d := range c.decls {
		slots[i] = d.Line
		last = max(last, d.Line)
	}

	type insertion struct {
		before int
		text   string
		reason string
	}
	var out []insertion
	if last == 0 {
		ns := c.scope.NamespaceLine()
		out = append(out, insertion{before: ns + 1, reason: c.adds[0].Reason})
		last = ns
	}
	for _, add := range adds {
		before := last + 1
		for i, d := range canonical {
			if _, ok := gone[slots[i]]; ok {
				continue
			}
			if imports.Compare(add, d) < 0 {
				before = slots[i]
				break
			}
		}
		out = append(out, insertion{
			before: before,
			text:   "use " + add.Name.String() + ";",
			reason: reasons[add.Name.String()],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].before < out[j].before })

	// вставки применяются после удалений и сверху вниз
	for k, ins := range out {
		shift := 0
		for _, r := range removed {
			if r < ins.before {
				shift++
			}
		}
		c.fixes.Add(fix.AddLine(ins.before-shift+k, ins.text, ins.reason))
	}
}

func (c *Checker) reportMovements(plan imports.Plan) {
	lines := make([]int, 0, len(plan.Movements))
	for from, to := range plan.Movements {
		if from != to {
			lines = append(lines, from)
		}
	}
	sort.Ints(lines)
	for _, from := range lines {
		c.sink.Report(diag.DisorganizedUses, from,
			fmt.Sprintf("%s: this use should be on line %d", disorganizedReason, plan.Movements[from]))
	}
}

// distinctLines is false when two statements share a line, as in
// `use A; use B;`.
func distinctLines(decls []imports.Declaration) bool {
	seen := make(map[int]struct{}, len(decls))
	for _, d := range decls {
		if _, dup := seen[d.Line]; dup {
			return false
		}
		seen[d.Line] = struct{}{}
	}
	return true
}
