package mutate

import "github.com/matzehuels/archflow/pkg/graph"

type box struct{ x, y, w, h float64 }

func (a box) intersects(b box) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x && a.y < b.y+b.h && a.y+a.h > b.y
}

func boundsOf(nodes []graph.Node, n *graph.Node) box {
	abs, _ := graph.AbsolutePosition(nodes, n.ID)
	w, h := n.Size()
	return box{abs.X, abs.Y, w, h}
}

// DropTarget returns the ID of the first group whose bounds intersect the
// dragged node, or "" when there is none. Groups are never dropped into
// other groups.
func DropTarget(nodes []graph.Node, draggedID string) string {
	dragged := graph.FindNode(nodes, draggedID)
	if dragged == nil || dragged.IsGroup() {
		return ""
	}
	b := boundsOf(nodes, dragged)
	for i := range nodes {
		g := &nodes[i]
		if !g.IsGroup() || g.ID == draggedID {
			continue
		}
		if b.intersects(boundsOf(nodes, g)) {
			return g.ID
		}
	}
	return ""
}

// ReparentOnDrop attaches a dropped node to the group under it, or detaches
// it when it was dropped outside its current group.
func ReparentOnDrop(s graph.State, draggedID string) (graph.State, bool) {
	n := graph.FindNode(s.Nodes, draggedID)
	if n == nil {
		return s, false
	}
	target := DropTarget(s.Nodes, draggedID)
	if target == n.ParentID {
		return s, false
	}
	return Reparent(s, draggedID, target)
}

// ToggleGroupCollapse collapses an expanded group to its header or expands
// a collapsed one. Collapsing remembers the expanded height the first time
// and hides the direct children; expanding restores both.
func ToggleGroupCollapse(s graph.State, groupID string) (graph.State, bool) {
	g := graph.FindNode(s.Nodes, groupID)
	if g == nil || !g.IsGroup() {
		return s, false
	}

	out := s.Clone()
	g = graph.FindNode(out.Nodes, groupID)
	collapse := !g.Data.Collapsed
	if g.Style == nil {
		g.Style = &graph.NodeStyle{}
	}

	if collapse {
		if g.Data.ExpandedHeight == 0 {
			g.Data.ExpandedHeight = firstPositive(g.Height, g.Style.Height, graph.DefaultGroupHeight)
		}
		g.Style.Height = graph.CollapsedGroupHeight
	} else {
		g.Style.Height = firstPositive(g.Data.ExpandedHeight, graph.DefaultGroupHeight)
	}
	g.Data.Collapsed = collapse

	for i := range out.Nodes {
		if out.Nodes[i].ParentID == groupID {
			out.Nodes[i].Hidden = collapse
		}
	}
	return out, true
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
