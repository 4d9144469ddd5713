// Package dag provides a directed graph organised into rows (ranks), the
// working structure for the layered diagram layout in [layout].
//
// # Overview
//
// Automatic layout of an architecture diagram follows the Sugiyama scheme:
// break cycles, assign every node a rank, split edges that span several
// ranks, order the nodes inside each rank to reduce crossings, and finally
// assign coordinates. This package provides the graph those stages share.
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "gateway"})
//	g.AddNode(dag.Node{ID: "orders"})
//	g.AddEdge(dag.Edge{From: "gateway", To: "orders"})
//
// Unlike a map-backed graph, iteration ([DAG.Nodes], [DAG.Sources],
// [DAG.NodesInRow]) follows insertion order. Layout results therefore
// depend only on the input document, never on map iteration order.
//
// # Node Kinds
//
//   - [NodeKindRegular]: a node of the diagram
//   - [NodeKindDummy]: a synthetic node splitting an edge that spans ranks
//
// # Crossings
//
// [CountCrossings] and [CountLayerCrossings] count edge crossings between
// adjacent ranks by counting inversions. [CountPairCrossings] evaluates the
// local effect of swapping two neighbours, which drives the transposition
// heuristic in package [ordering].
//
// [layout]: github.com/matzehuels/archflow/pkg/layout
// [ordering]: github.com/matzehuels/archflow/pkg/dag/ordering
package dag
