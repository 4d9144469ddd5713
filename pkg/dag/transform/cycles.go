package transform

import "github.com/matzehuels/archflow/pkg/dag"

// BreakCycles deletes the back edges of a depth-first search and returns
// how many it deleted. The search starts at the sources in insertion order
// and then at any node not yet reached, so a graph that is one big cycle is
// handled too. Self-loops always count as back edges.
func BreakCycles(g *dag.DAG) int {
	return len(cutBackEdges(g))
}

// ReverseCycles makes g acyclic by flipping back edges instead of deleting
// them, which keeps the two endpoints in neighbouring ranks. Self-loops are
// deleted, and so is a back edge whose reverse already exists. The flipped
// edges are returned as they now appear in g.
func ReverseCycles(g *dag.DAG) []dag.Edge {
	var flipped []dag.Edge
	for _, e := range cutBackEdges(g) {
		if e.From == e.To || g.HasEdge(e.To, e.From) {
			continue
		}
		r := dag.Edge{From: e.To, To: e.From, Reversed: true}
		if err := g.AddEdge(r); err != nil {
			panic(err) // both endpoints exist
		}
		flipped = append(flipped, r)
	}
	return flipped
}

type visit uint8

const (
	unvisited visit = iota
	onStack
	finished
)

// cutBackEdges removes and returns the back edges found by an iterative
// depth-first search. Parallel back edges are reported once.
func cutBackEdges(g *dag.DAG) []dag.Edge {
	state := make(map[string]visit, g.NodeCount())
	reported := make(map[dag.Edge]bool)
	var back []dag.Edge

	type frame struct {
		id   string
		next int
	}
	walk := func(root string) {
		if state[root] != unvisited {
			return
		}
		state[root] = onStack
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				state[top.id] = finished
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch state[child] {
			case unvisited:
				state[child] = onStack
				stack = append(stack, frame{id: child})
			case onStack:
				e := dag.Edge{From: top.id, To: child}
				if !reported[e] {
					reported[e] = true
					back = append(back, e)
				}
			}
		}
	}

	for _, n := range g.Sources() {
		walk(n.ID)
	}
	for _, n := range g.Nodes() {
		walk(n.ID)
	}
	for _, e := range back {
		g.RemoveEdge(e.From, e.To)
	}
	return back
}
