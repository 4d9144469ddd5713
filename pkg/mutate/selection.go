package mutate

import "github.com/matzehuels/archflow/pkg/graph"

// SelectNode sets the selection flag of node id.
func SelectNode(s graph.State, id string, selected bool) (graph.State, bool) {
	return updateNode(s, id, func(n *graph.Node) { n.Selected = selected })
}

// SelectEdge sets the selection flag of edge id.
func SelectEdge(s graph.State, id string, selected bool) (graph.State, bool) {
	return updateEdge(s, id, func(e *graph.Edge) { e.Selected = selected })
}

// SetNodeHidden sets the hidden flag of node id.
func SetNodeHidden(s graph.State, id string, hidden bool) (graph.State, bool) {
	return updateNode(s, id, func(n *graph.Node) { n.Hidden = hidden })
}
