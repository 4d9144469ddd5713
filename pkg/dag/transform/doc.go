// Package transform prepares a [dag.DAG] for layered drawing.
//
// # Overview
//
// Diagram graphs are drawn by users and may contain cycles, self-loops and
// edges that jump over several ranks. The layered layout needs a proper
// layering instead: acyclic, with every edge connecting consecutive rows.
// [Normalize] runs the three steps that get there, in order.
//
// # Cycle Reversal
//
// [ReverseCycles] finds DFS back edges and flips them. A flipped edge keeps
// its two endpoints in neighbouring ranks, so a request/response pair such as
// service→cache, cache→service still sits close together. [BreakCycles] is
// the simpler variant that drops back edges outright.
//
// # Rank Assignment
//
// [AssignLayers] gives each node the length of the longest path reaching it
// from any source. Nodes without edges land on rank 0.
//
// # Edge Subdivision
//
// [Subdivide] breaks long edges into chains of single-rank hops:
//
//	Before: gateway (rank 0) → postgres (rank 3)
//	After:  gateway → gateway_dummy_1 → gateway_dummy_2 → postgres
//
// Dummy nodes take part in crossing reduction so long edges are routed
// around the boxes they would otherwise cut through.
//
// [dag.DAG]: github.com/matzehuels/archflow/pkg/dag.DAG
package transform
