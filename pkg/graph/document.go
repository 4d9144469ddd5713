package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is reported by [Document.Validate] when two nodes or two
	// edges share an ID.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrDanglingEdge is reported by [Document.Validate] when an edge endpoint
	// does not reference an existing node.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrMissingParent is reported by [Document.Validate] when a node's
	// ParentID does not reference an existing node.
	ErrMissingParent = errors.New("parent does not exist")

	// ErrParentNotGroup is reported by [Document.Validate] when a node's
	// parent is not a group.
	ErrParentNotGroup = errors.New("parent is not a group")
)

// Document is one diagram: its nodes, its edges and the options new edges
// are created with. A nil DefaultEdgeOptions means the built-in defaults.
type Document struct {
	Nodes              []Node              `json:"nodes"`
	Edges              []Edge              `json:"edges"`
	DefaultEdgeOptions *DefaultEdgeOptions `json:"defaultEdgeOptions,omitempty"`
}

// NewDocument returns an empty document with non-nil slices.
func NewDocument() *Document {
	return &Document{Nodes: []Node{}, Edges: []Edge{}}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	s := d.State().Clone()
	out := &Document{Nodes: s.Nodes, Edges: s.Edges}
	if d.DefaultEdgeOptions != nil {
		out.DefaultEdgeOptions = ptr(d.DefaultEdgeOptions.Clone())
	}
	return out
}

// State returns the nodes and edges of d without copying them.
func (d *Document) State() State {
	return State{Nodes: d.Nodes, Edges: d.Edges}
}

// SetState replaces the nodes and edges of d.
func (d *Document) SetState(s State) {
	d.Nodes = s.Nodes
	d.Edges = s.Edges
}

// EdgeDefaults returns the document's DefaultEdgeOptions, or the built-in
// defaults when none are set.
func (d *Document) EdgeDefaults() DefaultEdgeOptions {
	if d.DefaultEdgeOptions == nil {
		return NewDefaultEdgeOptions()
	}
	return d.DefaultEdgeOptions.Clone()
}

// Node returns a pointer to the node with the given id, or nil.
func (d *Document) Node(id string) *Node { return FindNode(d.Nodes, id) }

// Edge returns a pointer to the edge with the given id, or nil.
func (d *Document) Edge(id string) *Edge {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i]
		}
	}
	return nil
}

// Children returns the IDs of the direct children of groupID, in document
// order.
func (d *Document) Children(groupID string) []string {
	var ids []string
	for _, n := range d.Nodes {
		if n.ParentID == groupID {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// AbsolutePosition returns the canvas position of a node. Nesting is a single
// level deep, so the parent's own position is absolute.
func (d *Document) AbsolutePosition(id string) (Position, bool) {
	return AbsolutePosition(d.Nodes, id)
}

// Validate reports every referential-integrity violation in d, joined with
// [errors.Join]. It never mutates d.
func (d *Document) Validate() error {
	var errs []error

	nodes := make(map[string]*Node, len(d.Nodes))
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, fmt.Errorf("node %q: %w", n.ID, ErrDuplicateID))
			continue
		}
		nodes[n.ID] = n
	}

	for _, n := range d.Nodes {
		if n.ParentID == "" {
			continue
		}
		parent, ok := nodes[n.ParentID]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("node %q: parent %q: %w", n.ID, n.ParentID, ErrMissingParent))
		case !parent.IsGroup():
			errs = append(errs, fmt.Errorf("node %q: parent %q: %w", n.ID, n.ParentID, ErrParentNotGroup))
		}
	}

	edges := make(map[string]struct{}, len(d.Edges))
	for _, e := range d.Edges {
		if _, dup := edges[e.ID]; dup {
			errs = append(errs, fmt.Errorf("edge %q: %w", e.ID, ErrDuplicateID))
		}
		edges[e.ID] = struct{}{}
		if _, ok := nodes[e.Source]; !ok {
			errs = append(errs, fmt.Errorf("edge %q: source %q: %w", e.ID, e.Source, ErrDanglingEdge))
		}
		if _, ok := nodes[e.Target]; !ok {
			errs = append(errs, fmt.Errorf("edge %q: target %q: %w", e.ID, e.Target, ErrDanglingEdge))
		}
	}

	return errors.Join(errs...)
}

// FindNode returns a pointer into nodes for the given id, or nil.
func FindNode(nodes []Node, id string) *Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

// AbsolutePosition resolves the canvas position of id within nodes.
func AbsolutePosition(nodes []Node, id string) (Position, bool) {
	n := FindNode(nodes, id)
	if n == nil {
		return Position{}, false
	}
	if n.ParentID == "" {
		return n.Position, true
	}
	if p := FindNode(nodes, n.ParentID); p != nil {
		return n.Position.Add(p.Position), true
	}
	return n.Position, true
}
