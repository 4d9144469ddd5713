package mutate

import "github.com/matzehuels/archflow/pkg/graph"

// DefaultDescription is the description of a freshly dropped node whose kind
// has none.
const DefaultDescription = "New Node"

// AddNode appends a node of the given kind at pos and returns its ID.
//
// The kind registry supplies the render type and label; unknown kinds become
// custom nodes labelled [graph.FallbackLabel]. Non-empty fields of init
// override the registry defaults. Groups start expanded at the default group
// size.
func AddNode(s graph.State, kind string, pos graph.Position, init *graph.NodeData, ids IDSource) (graph.State, string) {
	k := graph.ResolveKind(kind)

	n := graph.Node{
		ID:       idsOrDefault(ids).NewID(NodePrefix),
		Type:     k.Render,
		Position: pos,
		Data: graph.NodeData{
			Kind:        kind,
			Label:       k.Label,
			Description: k.Description,
		},
	}
	if n.Data.Description == "" {
		n.Data.Description = DefaultDescription
	}
	if init != nil {
		mergeInitialData(&n.Data, init)
	}
	if n.IsGroup() {
		n.Style = &graph.NodeStyle{Width: graph.DefaultGroupWidth, Height: graph.DefaultGroupHeight}
		n.Data.Collapsed = false
	}

	out := s.Clone()
	out.Nodes = append(out.Nodes, n)
	return out, n.ID
}

func mergeInitialData(d *graph.NodeData, init *graph.NodeData) {
	for _, f := range []struct{ dst, src *string }{
		{&d.Label, &init.Label},
		{&d.Description, &init.Description},
		{&d.Namespace, &init.Namespace},
		{&d.StepNumber, &init.StepNumber},
		{&d.AttachedNote, &init.AttachedNote},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	if init.Style != nil {
		st := graph.StyleOverrides{}.Merge(*init.Style)
		d.Style = &st
	}
}

// UpdateNodeData merges patch into the data of node id.
func UpdateNodeData(s graph.State, id string, patch NodeDataPatch) (graph.State, bool) {
	return updateNode(s, id, func(n *graph.Node) { patch.apply(&n.Data) })
}

// UpdateNodeStyle sets the resize dimensions of node id. Zero leaves a
// dimension unchanged.
func UpdateNodeStyle(s graph.State, id string, width, height float64) (graph.State, bool) {
	return updateNode(s, id, func(n *graph.Node) {
		if n.Style == nil {
			n.Style = &graph.NodeStyle{}
		}
		if width > 0 {
			n.Style.Width = width
		}
		if height > 0 {
			n.Style.Height = height
		}
	})
}

// MoveNode sets the position of node id. For a child node pos is relative
// to its group.
func MoveNode(s graph.State, id string, pos graph.Position) (graph.State, bool) {
	return updateNode(s, id, func(n *graph.Node) { n.Position = pos })
}

// SetMeasuredSize records the size the front end measured for node id.
func SetMeasuredSize(s graph.State, id string, width, height float64) (graph.State, bool) {
	return updateNode(s, id, func(n *graph.Node) {
		n.Width = width
		n.Height = height
	})
}

// DeleteNode removes node id and every edge touching it. Children of a
// deleted group stay on the canvas at their absolute positions.
func DeleteNode(s graph.State, id string) (graph.State, bool) {
	idx := indexOfNode(s.Nodes, id)
	if idx < 0 {
		return s, false
	}
	origin := s.Nodes[idx].Position

	out := graph.State{
		Nodes: make([]graph.Node, 0, len(s.Nodes)-1),
		Edges: make([]graph.Edge, 0, len(s.Edges)),
	}
	for _, n := range s.Nodes {
		if n.ID == id {
			continue
		}
		n = n.Clone()
		if n.ParentID == id {
			n.ParentID = ""
			n.Position = n.Position.Add(origin)
			n.Hidden = false
		}
		out.Nodes = append(out.Nodes, n)
	}
	for _, e := range s.Edges {
		if e.Source == id || e.Target == id {
			continue
		}
		out.Edges = append(out.Edges, e.Clone())
	}
	return out, true
}

// DuplicateNode appends a copy of node id, offset by [DuplicateOffset] and
// unselected, and returns the copy's ID. Edges and group children are not
// copied.
func DuplicateNode(s graph.State, id string, ids IDSource) (graph.State, string, bool) {
	idx := indexOfNode(s.Nodes, id)
	if idx < 0 {
		return s, "", false
	}
	dup := s.Nodes[idx].Clone()
	dup.ID = idsOrDefault(ids).NewID(NodePrefix)
	dup.Position = dup.Position.Add(graph.Position{X: DuplicateOffset, Y: DuplicateOffset})
	dup.Selected = false

	out := s.Clone()
	out.Nodes = append(out.Nodes, dup)
	return out, dup.ID, true
}

// Reparent moves node id into group parentID, or onto the top-level canvas
// when parentID is empty. The node keeps its absolute position.
//
// Missing IDs, non-group targets, self-parenting and nesting a group inside
// another group are no-ops, as is a call that would not change the parent.
func Reparent(s graph.State, id, parentID string) (graph.State, bool) {
	idx := indexOfNode(s.Nodes, id)
	if idx < 0 {
		return s, false
	}
	n := &s.Nodes[idx]
	if n.ParentID == parentID {
		return s, false
	}

	abs, _ := graph.AbsolutePosition(s.Nodes, id)

	if parentID == "" {
		return updateNode(s, id, func(n *graph.Node) {
			n.ParentID = ""
			n.Position = abs
			n.Hidden = false
		})
	}

	if parentID == id || n.IsGroup() {
		return s, false
	}
	pidx := indexOfNode(s.Nodes, parentID)
	if pidx < 0 || !s.Nodes[pidx].IsGroup() {
		return s, false
	}
	parent := s.Nodes[pidx]

	out, _ := updateNode(s, id, func(n *graph.Node) {
		n.ParentID = parentID
		n.Position = abs.Sub(parent.Position)
		n.Hidden = parent.Data.Collapsed
	})
	if idx < pidx {
		out.Nodes = moveAfter(out.Nodes, idx, pidx)
	}
	return out, true
}

// moveAfter moves nodes[from] to just after nodes[to], with from < to.
// Groups must precede their children in the node list.
func moveAfter(nodes []graph.Node, from, to int) []graph.Node {
	n := nodes[from]
	copy(nodes[from:to], nodes[from+1:to+1])
	nodes[to] = n
	return nodes
}
