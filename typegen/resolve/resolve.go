// Package resolve orders declarations for emission and computes each module's
// imports.
//
// Ordering only considers references inside a module: a module is
// self-consistent once its imports are available. Ties are broken by
// declaration order, never alphabetically, so generated files follow the source.
package resolve

import (
	"sort"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen/model"
)

// CyclePolicy decides which reference cycles are accepted.
type CyclePolicy string

const (
	// CyclesReject rejects every cycle.
	CyclesReject CyclePolicy = "reject"
	// CyclesAllowIndirect accepts cycles that pass through a list, map or
	// optional at least once. Such references are rendered lazily.
	CyclesAllowIndirect CyclePolicy = "allow-indirect"
)

func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch CyclePolicy(s) {
	case "", CyclesReject:
		return CyclesReject, nil
	case CyclesAllowIndirect:
		return CyclesAllowIndirect, nil
	}
	return "", errors.Newf("unknown cycle policy %q (expected reject or allow-indirect)", s)
}

type Options struct {
	Cycles CyclePolicy
}

// Plan is the emission plan of a whole run.
type Plan struct {
	Modules []*ModulePlan
}

// ModulePlan is what the emitter needs for one module.
type ModulePlan struct {
	Module string
	// Order lists the module's own types (fully-qualified) in emission order.
	Order []string
	// Imports lists referenced types of other modules, sorted.
	Imports []string
	// Deferred lists referenced types that are not yet initialized where they are
	// used: forward references inside the module and references into modules
	// that import this one back.
	Deferred []string
}

// Module returns the plan of one module.
func (p *Plan) Module(path string) (*ModulePlan, bool) {
	for _, m := range p.Modules {
		if m.Module == path {
			return m, true
		}
	}
	return nil, false
}

// IsDeferred reports whether references to fqn must be rendered lazily.
func (m *ModulePlan) IsDeferred(fqn string) bool {
	i := sort.SearchStrings(m.Deferred, fqn)
	return i < len(m.Deferred) && m.Deferred[i] == fqn
}

// Resolve verifies every reference, rejects cycles the policy does not permit
// and plans each module. All unresolved references or all cycles are reported
// together.
func Resolve(reg *model.Registry, opts Options) (*Plan, error) {
	if opts.Cycles == "" {
		opts.Cycles = CyclesReject
	}

	g, unresolved := buildGraph(reg)
	if len(unresolved) > 0 {
		var errs error
		for _, u := range unresolved {
			errs = errors.Append(errs, errors.WithHint(u, u.hint()))
		}
		return nil, errs
	}

	if err := checkCycles(g, opts.Cycles); err != nil {
		return nil, err
	}

	module := make([]string, len(g.names))
	for i, d := range reg.Types() {
		module[i] = d.ModulePath()
	}
	var mutual map[[2]string]bool
	if opts.Cycles == CyclesAllowIndirect {
		mutual = mutualModules(g, module)
	}

	plan := &Plan{}
	for _, m := range reg.Modules() {
		var nodes []int
		for i := range g.names {
			if module[i] == m {
				nodes = append(nodes, i)
			}
		}
		plan.Modules = append(plan.Modules, planModule(g, m, nodes, module, mutual))
	}
	return plan, nil
}

func checkCycles(g *graph, policy CyclePolicy) error {
	all := make([]int, len(g.names))
	for i := range all {
		all[i] = i
	}

	var errs error
	for _, comp := range ordered(g.sccs(all, anyEdge)) {
		if !g.cyclic(comp, anyEdge) {
			continue
		}
		found := false
		for _, sub := range ordered(g.sccs(comp, directEdge)) {
			if g.cyclic(sub, directEdge) {
				errs = errors.Append(errs, cycleError(g, sub, directEdge))
				found = true
			}
		}
		if !found && policy == CyclesReject {
			errs = errors.Append(errs, cycleError(g, comp, anyEdge))
		}
	}
	return errs
}

func cycleError(g *graph, comp []int, keep func(edge) bool) error {
	path := g.cycleFrom(comp[0], comp, keep)
	e := &CycleError{Direct: true}
	for i, n := range path {
		e.Members = append(e.Members, g.names[n])
		next := path[(i+1)%len(path)]
		if ed, _ := g.edge(n, next); !ed.direct {
			e.Direct = false
		}
	}
	return errors.WithHint(e, e.hint())
}

// ordered sorts components by their earliest member so errors follow
// declaration order.
func ordered(comps [][]int) [][]int {
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// planModule runs Kahn's algorithm over the module's internal edges. Among
// ready nodes the earliest declared goes first. When only nodes on accepted
// cycles remain, the earliest one whose pending dependencies are all indirect
// is emitted and its forward references become deferred.
func planModule(g *graph, name string, nodes []int, module []string, mutual map[[2]string]bool) *ModulePlan {
	inModule := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		inModule[n] = true
	}

	emitted := make(map[int]bool, len(nodes))
	var order []int
	for len(order) < len(nodes) {
		pick := -1
		for _, n := range nodes {
			if !emitted[n] && pendingDeps(g, n, inModule, emitted, anyEdge) == 0 {
				pick = n
				break
			}
		}
		if pick < 0 {
			for _, n := range nodes {
				if !emitted[n] && pendingDeps(g, n, inModule, emitted, directEdge) == 0 {
					pick = n
					break
				}
			}
		}
		if pick < 0 {
			// Unreachable after checkCycles; keep declaration order for the rest.
			for _, n := range nodes {
				if !emitted[n] {
					pick = n
					break
				}
			}
		}
		emitted[pick] = true
		order = append(order, pick)
	}

	position := make(map[int]int, len(order))
	for i, n := range order {
		position[n] = i
	}

	imports := map[string]bool{}
	deferred := map[string]bool{}
	for _, n := range order {
		for _, e := range g.out[n] {
			target := g.names[e.to]
			if !inModule[e.to] {
				imports[target] = true
				if mutual[[2]string{name, module[e.to]}] {
					deferred[target] = true
				}
				continue
			}
			if position[e.to] >= position[n] {
				deferred[target] = true
			}
		}
	}

	mp := &ModulePlan{Module: name}
	for _, n := range order {
		mp.Order = append(mp.Order, g.names[n])
	}
	mp.Imports = sortedSet(imports)
	mp.Deferred = sortedSet(deferred)
	return mp
}

// pendingDeps counts the module-internal dependencies of n not yet emitted.
// Self references never block.
func pendingDeps(g *graph, n int, inModule, emitted map[int]bool, keep func(edge) bool) int {
	count := 0
	for _, e := range g.out[n] {
		if e.to != n && inModule[e.to] && !emitted[e.to] && keep(e) {
			count++
		}
	}
	return count
}

// mutualModules finds pairs of distinct modules that import each other, directly
// or through other modules. Generated files for such modules form an import
// cycle, so under CyclesAllowIndirect references between them are deferred.
// Under CyclesReject nothing is ever deferred.
func mutualModules(g *graph, module []string) map[[2]string]bool {
	var names []string
	id := map[string]int{}
	for _, m := range module {
		if _, ok := id[m]; !ok {
			id[m] = len(names)
			names = append(names, m)
		}
	}

	mg := newGraph(names)
	for from := range g.names {
		for _, e := range g.out[from] {
			a, b := id[module[from]], id[module[e.to]]
			if a != b {
				mg.addEdge(a, b, true)
			}
		}
	}

	all := make([]int, len(names))
	for i := range all {
		all[i] = i
	}
	out := map[[2]string]bool{}
	for _, comp := range mg.sccs(all, anyEdge) {
		for _, a := range comp {
			for _, b := range comp {
				if a != b {
					out[[2]string{names[a], names[b]}] = true
				}
			}
		}
	}
	return out
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
