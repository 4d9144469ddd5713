// Package mutate implements the editing operations of a diagram as pure
// functions over [graph.State].
//
// Every function takes a state and returns a new one; the input is never
// modified. Operations that reference a missing node or edge, or that would
// break the parent invariant, are silent no-ops: they return the input
// unchanged and report changed=false. The editor session uses that flag to
// decide whether to record a history entry.
//
//	s, id := mutate.AddNode(s, "service", graph.Position{X: 100, Y: 80}, nil, mutate.UUIDs{})
//	s, _, ok := mutate.Connect(s, gatewayID, id, "", "", graph.NewDefaultEdgeOptions(), mutate.UUIDs{})
package mutate

import (
	"github.com/google/uuid"

	"github.com/matzehuels/archflow/pkg/graph"
)

// ID prefixes for generated identifiers.
const (
	NodePrefix = "node"
	EdgePrefix = "edge"
)

// DuplicateOffset is how far a duplicated node is moved from its original on
// both axes.
const DuplicateOffset = 50.0

// IDSource generates identifiers for new nodes and edges.
type IDSource interface {
	NewID(prefix string) string
}

// UUIDs generates "<prefix>_<uuid>" identifiers.
type UUIDs struct{}

// NewID implements [IDSource].
func (UUIDs) NewID(prefix string) string { return prefix + "_" + uuid.NewString() }

func idsOrDefault(ids IDSource) IDSource {
	if ids == nil {
		return UUIDs{}
	}
	return ids
}

func indexOfNode(nodes []graph.Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfEdge(edges []graph.Edge, id string) int {
	for i := range edges {
		if edges[i].ID == id {
			return i
		}
	}
	return -1
}

// updateNode clones s and applies fn to the node with the given id.
func updateNode(s graph.State, id string, fn func(n *graph.Node)) (graph.State, bool) {
	if indexOfNode(s.Nodes, id) < 0 {
		return s, false
	}
	out := s.Clone()
	fn(&out.Nodes[indexOfNode(out.Nodes, id)])
	return out, true
}

// updateEdge clones s and applies fn to the edge with the given id.
func updateEdge(s graph.State, id string, fn func(e *graph.Edge)) (graph.State, bool) {
	if indexOfEdge(s.Edges, id) < 0 {
		return s, false
	}
	out := s.Clone()
	fn(&out.Edges[indexOfEdge(out.Edges, id)])
	return out, true
}
