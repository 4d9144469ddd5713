package transform

import (
	"strconv"

	"github.com/matzehuels/archflow/pkg/dag"
)

// Subdivide replaces each edge spanning more than one rank with a chain of
// [dag.NodeKindDummy] nodes, one per rank in between:
//
//	before: gateway (rank 0) → postgres (rank 3)
//	after:  gateway → gateway_dummy_1 → gateway_dummy_2 → postgres
//
// Dummies are ordered and placed like any other node; the layout engine
// drops them from its output. A dummy ID that is already taken gets a
// "__n" suffix. Every segment inherits the Reversed flag of its edge.
func Subdivide(g *dag.DAG) {
	taken := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		taken[n.ID] = true
	}
	dummyID := func(master string, row int) string {
		base := master + "_dummy_" + strconv.Itoa(row)
		id := base
		for i := 1; taken[id]; i++ {
			id = base + "__" + strconv.Itoa(i)
		}
		taken[id] = true
		return id
	}

	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row-src.Row < 2 {
			continue
		}

		g.RemoveEdge(e.From, e.To)
		prev := src.ID
		for row := src.Row + 1; row <= dst.Row; row++ {
			next := dst.ID
			if row < dst.Row {
				next = dummyID(src.ID, row)
				mustAddNode(g, dag.Node{ID: next, Row: row, Kind: dag.NodeKindDummy, MasterID: src.ID})
			}
			mustAddEdge(g, dag.Edge{From: prev, To: next, Reversed: e.Reversed})
			prev = next
		}
	}
}

// The transforms only touch nodes they just read from g, so these cannot
// fail short of a bug.
func mustAddNode(g *dag.DAG, n dag.Node) {
	if err := g.AddNode(n); err != nil {
		panic(err)
	}
}

func mustAddEdge(g *dag.DAG, e dag.Edge) {
	if err := g.AddEdge(e); err != nil {
		panic(err)
	}
}
