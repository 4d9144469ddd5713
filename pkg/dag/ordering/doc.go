// Package ordering arranges the nodes of each row of a layered graph.
//
// Finding the ordering with the fewest edge crossings is NP-hard even for
// two rows. [Barycentric] is the standard heuristic: it places each node at
// the mean position of its neighbours in the adjacent row, alternating
// top-down and bottom-up sweeps, and follows each sweep with adjacent
// transpositions that strictly reduce crossings. The best ordering seen,
// scored with [dag.CountCrossings], is returned.
//
// [Exhaustive] refines another orderer by trying every permutation of each
// narrow row against its neighbours, which is affordable for the small ranks
// typical of architecture diagrams.
//
// The [Orderer] interface lets the layout engine swap strategies:
//
//	var orderer ordering.Orderer = ordering.Exhaustive{Base: ordering.Barycentric{Passes: 8}}
//	orders := orderer.OrderRows(g) // map[row][]nodeID
//
// [dag.CountCrossings]: github.com/matzehuels/archflow/pkg/dag.CountCrossings
package ordering
