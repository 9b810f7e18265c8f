package resolve

import (
	"sort"

	"github.com/teranos/zorsh-gen/typegen/model"
)

// edge is "from references to". Parallel references collapse into one edge
// that is direct if any of them is.
type edge struct {
	to     int
	direct bool
}

// graph is the reference graph over registry indices.
type graph struct {
	names []string
	index map[string]int
	out   [][]edge
}

func newGraph(names []string) *graph {
	g := &graph{
		names: names,
		index: make(map[string]int, len(names)),
		out:   make([][]edge, len(names)),
	}
	for i, n := range names {
		g.index[n] = i
	}
	return g
}

func (g *graph) addEdge(from, to int, indirect bool) {
	for i := range g.out[from] {
		if g.out[from][i].to == to {
			g.out[from][i].direct = g.out[from][i].direct || !indirect
			return
		}
	}
	g.out[from] = append(g.out[from], edge{to: to, direct: !indirect})
}

func (g *graph) edge(from, to int) (edge, bool) {
	for _, e := range g.out[from] {
		if e.to == to {
			return e, true
		}
	}
	return edge{}, false
}

// sccs returns the strongly connected components (Tarjan). Components come out
// in reverse topological order; members of each are sorted by index.
// keep filters the edges taken into account.
func (g *graph) sccs(nodes []int, keep func(e edge) bool) [][]int {
	inSet := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		inSet[n] = true
	}

	index := make(map[int]int, len(nodes))
	low := make(map[int]int, len(nodes))
	onStack := make(map[int]bool, len(nodes))
	var stack []int
	var out [][]int
	next := 0

	var connect func(v int)
	connect = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range g.out[v] {
			if !inSet[e.to] || !keep(e) {
				continue
			}
			if _, seen := index[e.to]; !seen {
				connect(e.to)
				low[v] = min(low[v], low[e.to])
			} else if onStack[e.to] {
				low[v] = min(low[v], index[e.to])
			}
		}

		if low[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Ints(comp)
			out = append(out, comp)
		}
	}

	for _, n := range nodes {
		if _, seen := index[n]; !seen {
			connect(n)
		}
	}
	return out
}

// cyclic reports whether comp contains a cycle under keep: more than one
// member, or a single member referencing itself.
func (g *graph) cyclic(comp []int, keep func(e edge) bool) bool {
	if len(comp) > 1 {
		return true
	}
	e, ok := g.edge(comp[0], comp[0])
	return ok && keep(e)
}

// cycleFrom returns a shortest cycle through start using only edges inside comp
// that pass keep, in traversal order.
func (g *graph) cycleFrom(start int, comp []int, keep func(e edge) bool) []int {
	inComp := make(map[int]bool, len(comp))
	for _, n := range comp {
		inComp[n] = true
	}

	prev := map[int]int{}
	queue := []int{start}
	visited := map[int]bool{start: true}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, e := range g.out[v] {
			if !inComp[e.to] || !keep(e) {
				continue
			}
			if e.to == start {
				path := []int{v}
				for path[0] != start {
					path = append([]int{prev[path[0]]}, path...)
				}
				return path
			}
			if !visited[e.to] {
				visited[e.to] = true
				prev[e.to] = v
				queue = append(queue, e.to)
			}
		}
	}
	return []int{start}
}

func anyEdge(edge) bool      { return true }
func directEdge(e edge) bool { return e.direct }

// buildGraph scans every declaration for references. References to names
// missing from the registry are returned as errors.
func buildGraph(reg *model.Registry) (*graph, []*UnresolvedReferenceError) {
	g := newGraph(reg.Names())
	var unresolved []*UnresolvedReferenceError

	for from, d := range reg.Types() {
		fqn := g.names[from]
		for _, m := range model.Members(d) {
			model.Walk(m.Shape, func(ref model.Reference, indirect bool) {
				to, ok := g.index[ref.FQN()]
				if !ok {
					var candidates []string
					for _, c := range reg.FindByName(ref.Name) {
						if c != ref.FQN() {
							candidates = append(candidates, c)
						}
					}
					unresolved = append(unresolved, &UnresolvedReferenceError{
						Type:       fqn,
						Field:      m.Label,
						Target:     ref.Name,
						Module:     ref.Module,
						Candidates: candidates,
					})
					return
				}
				g.addEdge(from, to, indirect)
			})
		}
	}
	return g, unresolved
}
