package transform

import "github.com/matzehuels/archflow/pkg/dag"

// Normalize runs the graph-shaping half of the layered layout: reverse
// cycles, assign ranks, and split long edges. Afterwards every edge connects
// consecutive rows and [dag.DAG.Validate] succeeds.
//
// The returned edges are the ones that were reversed to break cycles.
func Normalize(g *dag.DAG) []dag.Edge {
	reversed := ReverseCycles(g)
	AssignLayers(g)
	Subdivide(g)
	return reversed
}
