package dag

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] for an empty ID.
	ErrInvalidNodeID = errors.New("dag: empty node id")
	// ErrDuplicateNodeID is returned by [DAG.AddNode] when the ID is taken.
	ErrDuplicateNodeID = errors.New("dag: duplicate node id")
	// ErrUnknownNode is returned by [DAG.AddEdge] when an endpoint is missing.
	ErrUnknownNode = errors.New("dag: unknown node")
	// ErrNonConsecutiveRows is returned by [DAG.Validate] for an edge that
	// does not go from one row to the next.
	ErrNonConsecutiveRows = errors.New("dag: edge does not connect consecutive rows")
	// ErrGraphHasCycle is returned by [DAG.Validate] for a cyclic graph.
	ErrGraphHasCycle = errors.New("dag: graph contains a cycle")
)

// NodeKind tells diagram nodes apart from nodes added by the layout.
type NodeKind int

const (
	NodeKindRegular NodeKind = iota
	// NodeKindDummy splits an edge spanning several rows; MasterID names the
	// source of that edge.
	NodeKindDummy
)

// Node is a vertex placed in a row. Row 0 is the first rank.
type Node struct {
	ID       string
	Row      int
	Kind     NodeKind
	MasterID string
}

// IsDummy reports whether the node was inserted to split a long edge.
func (n Node) IsDummy() bool { return n.Kind == NodeKindDummy }

// Edge is a directed connection. Reversed marks an edge that was flipped
// to break a cycle.
type Edge struct {
	From     string
	To       string
	Reversed bool
}

type vertex struct {
	node     Node
	children []string
	parents  []string
}

// DAG is a directed graph whose nodes are grouped into rows. Every listing
// follows insertion order, so algorithms over it are deterministic for a
// given input. A DAG is not safe for concurrent use.
type DAG struct {
	vertices map[string]*vertex
	order    []string
	edges    []Edge
	rows     map[int][]*Node
}

// New returns an empty graph.
func New() *DAG {
	return &DAG{
		vertices: make(map[string]*vertex),
		rows:     make(map[int][]*Node),
	}
}

// AddNode inserts n into the row given by n.Row.
func (d *DAG) AddNode(n Node) error {
	switch {
	case n.ID == "":
		return ErrInvalidNodeID
	case d.vertices[n.ID] != nil:
		return fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
	}
	v := &vertex{node: n}
	d.vertices[n.ID] = v
	d.order = append(d.order, n.ID)
	d.rows[n.Row] = append(d.rows[n.Row], &v.node)
	return nil
}

// SetRows moves nodes to new rows. Nodes absent from rows stay where they
// are; each row keeps insertion order.
func (d *DAG) SetRows(rows map[string]int) {
	clear(d.rows)
	for _, id := range d.order {
		n := &d.vertices[id].node
		if r, ok := rows[id]; ok {
			n.Row = r
		}
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// AddEdge connects two existing nodes. Parallel edges are kept.
func (d *DAG) AddEdge(e Edge) error {
	from, to := d.vertices[e.From], d.vertices[e.To]
	if from == nil {
		return fmt.Errorf("%w: source %q", ErrUnknownNode, e.From)
	}
	if to == nil {
		return fmt.Errorf("%w: target %q", ErrUnknownNode, e.To)
	}
	d.edges = append(d.edges, e)
	from.children = append(from.children, e.To)
	to.parents = append(to.parents, e.From)
	return nil
}

// HasEdge reports whether from has an edge to to.
func (d *DAG) HasEdge(from, to string) bool {
	v := d.vertices[from]
	return v != nil && slices.Contains(v.children, to)
}

// RemoveEdge drops every edge from→to.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	if v := d.vertices[from]; v != nil {
		v.children = slices.DeleteFunc(v.children, func(id string) bool { return id == to })
	}
	if v := d.vertices[to]; v != nil {
		v.parents = slices.DeleteFunc(v.parents, func(id string) bool { return id == from })
	}
}

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	v := d.vertices[id]
	if v == nil {
		return nil, false
	}
	return &v.node, true
}

// Nodes returns every node in insertion order. The pointers alias the graph.
func (d *DAG) Nodes() []*Node {
	return d.collect(func(*vertex) bool { return true })
}

// Sources returns the nodes without parents, in insertion order.
func (d *DAG) Sources() []*Node {
	return d.collect(func(v *vertex) bool { return len(v.parents) == 0 })
}

func (d *DAG) collect(keep func(*vertex) bool) []*Node {
	out := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		if v := d.vertices[id]; keep(v) {
			out = append(out, &v.node)
		}
	}
	return out
}

// Edges returns a copy of the edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) NodeCount() int { return len(d.order) }
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the targets of id's outgoing edges. Do not modify the
// result.
func (d *DAG) Children(id string) []string {
	if v := d.vertices[id]; v != nil {
		return v.children
	}
	return nil
}

// Parents returns the sources of id's incoming edges. Do not modify the
// result.
func (d *DAG) Parents(id string) []string {
	if v := d.vertices[id]; v != nil {
		return v.parents
	}
	return nil
}

// InDegree is len(d.Parents(id)).
func (d *DAG) InDegree(id string) int { return len(d.Parents(id)) }

// NodesInRow returns the nodes of row in insertion order.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowCount returns the number of non-empty rows.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns the row indices in ascending order.
func (d *DAG) RowIDs() []int { return slices.Sorted(maps.Keys(d.rows)) }

// MaxRow returns the last row index, or 0 for an empty graph.
func (d *DAG) MaxRow() int {
	ids := d.RowIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// Validate checks the shape the layout stages produce: every edge goes from
// one row to the next and there is no cycle.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if d.vertices[e.To].node.Row != d.vertices[e.From].node.Row+1 {
			return fmt.Errorf("%w: %s→%s", ErrNonConsecutiveRows, e.From, e.To)
		}
	}
	return d.checkAcyclic()
}

// checkAcyclic peels off nodes whose parents are all gone; anything left
// over lies on a cycle.
func (d *DAG) checkAcyclic() error {
	pending := make(map[string]int, len(d.order))
	var ready []string
	for _, id := range d.order {
		if pending[id] = len(d.vertices[id].parents); pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	seen := 0
	for len(ready) > 0 {
		id := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		seen++
		for _, c := range d.vertices[id].children {
			if pending[c]--; pending[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	if seen < len(d.order) {
		return ErrGraphHasCycle
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return pos
}

// NodeIDs returns the IDs of nodes, in order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
