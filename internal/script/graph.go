package script

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Graph is the reactivity dependency graph among reactive bindings (spec
// §9: "represent the graph with node indices into a flat table"). An
// edge from b to d means some handler writes b while also reading d, so
// b's runtime value transitively depends on d.
type Graph struct {
	names []string
	index map[string]int
	edges [][]int
}

// NewGraph allocates an empty Graph over the given reactive binding
// names, in the order they should be addressed by index.
func NewGraph(names []string) *Graph {
	g := &Graph{
		names: names,
		index: make(map[string]int, len(names)),
		edges: make([][]int, len(names)),
	}
	for i, n := range names {
		g.index[n] = i
	}
	return g
}

// AddEdge records that binding `from` is written by a handler that also
// reads binding `to`. Both names must already be reactive bindings in
// the graph; unknown names are silently ignored (defensive against a
// caller iterating raw identifier dependency sets before filtering).
func (g *Graph) AddEdge(from, to string) {
	fi, ok := g.index[from]
	if !ok {
		return
	}
	ti, ok := g.index[to]
	if !ok || fi == ti {
		return
	}
	for _, existing := range g.edges[fi] {
		if existing == ti {
			return
		}
	}
	g.edges[fi] = append(g.edges[fi], ti)
}

// DetectCycle runs DFS with a recursion-stack mark set (spec §9) over
// every node, returning the binding names along the first cycle found.
func (g *Graph) DetectCycle() ([]string, bool) {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make([]int, len(g.names))
	var path []int

	var visit func(i int) []int
	visit = func(i int) []int {
		state[i] = inStack
		path = append(path, i)
		for _, next := range g.edges[i] {
			switch state[next] {
			case inStack:
				// Found the cycle: the suffix of path from next's first
				// occurrence to the end, plus the closing edge back to it.
				start := indexOf(path, next)
				cycle := append([]int{}, path[start:]...)
				return cycle
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[i] = done
		return nil
	}

	for i := range g.names {
		if state[i] == unvisited {
			if cycle := visit(i); cycle != nil {
				names := make([]string, len(cycle))
				for j, idx := range cycle {
					names[j] = g.names[idx]
				}
				return names, true
			}
		}
	}
	return nil, false
}

// Neighbors returns the binding names that name's handlers read directly
// (i.e. the edges out of name), for the planner's one-level dependency
// widening (spec §4.6: "derived reactive bindings contribute both their
// own bit and their dependencies' bits").
func (g *Graph) Neighbors(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(g.edges[i]))
	for j, idx := range g.edges[i] {
		out[j] = g.names[idx]
	}
	return out
}

func indexOf(path []int, v int) int {
	for i, p := range path {
		if p == v {
			return i
		}
	}
	return 0
}

// buildDependencyGraph constructs the reactivity graph by walking every
// function body that writes a reactive binding and collecting the free
// identifiers it also reads that resolve to other reactive bindings
// (spec §4.3 "cycle check").
func buildDependencyGraph(root *sitter.Node, src []byte, a *Analysis) *Graph {
	var reactiveNames []string
	for _, b := range a.Bindings {
		if b.Reactive {
			reactiveNames = append(reactiveNames, b.Name)
		}
	}
	g := NewGraph(reactiveNames)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "arrow_function", "function_expression", "function_declaration", "method_definition":
			writes := map[string]bool{}
			reads := map[string]bool{}
			collectWritesAndReads(n, src, writes, reads)
			for w := range writes {
				if _, ok := a.byName[w]; !ok || !a.byName[w].Reactive {
					continue
				}
				for r := range reads {
					if b, ok := a.byName[r]; ok && b.Reactive && r != w {
						g.AddEdge(w, r)
					}
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return g
}

// collectWritesAndReads gathers the set of identifiers assigned to
// (writes) and the set of free identifiers read (reads) within a
// function body, without descending into nested function literals
// (their own writes/reads are handled when walk visits them directly).
func collectWritesAndReads(n *sitter.Node, src []byte, writes, reads map[string]bool) {
	var walk func(n *sitter.Node, top bool)
	walk = func(n *sitter.Node, top bool) {
		if !top {
			switch n.Type() {
			case "arrow_function", "function_expression", "function_declaration":
				return
			}
		}
		switch n.Type() {
		case "assignment_expression", "augmented_assignment_expression":
			if left := n.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
				writes[text(left, src)] = true
			}
			if right := n.ChildByFieldName("right"); right != nil {
				collectFreeIdentifiers(right, src, map[string]bool{}, reads)
			}
			return
		case "identifier":
			reads[text(n, src)] = true
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i), false)
		}
	}
	walk(n, true)
}
