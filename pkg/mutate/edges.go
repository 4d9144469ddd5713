package mutate

import "github.com/matzehuels/archflow/pkg/graph"

// Connect appends an edge from source to target seeded from defaults and
// returns its ID. It is a no-op when either endpoint is missing. Self-loops
// are allowed.
func Connect(s graph.State, source, target, sourceHandle, targetHandle string, defaults graph.DefaultEdgeOptions, ids IDSource) (graph.State, string, bool) {
	if indexOfNode(s.Nodes, source) < 0 || indexOfNode(s.Nodes, target) < 0 {
		return s, "", false
	}
	defaults = defaults.Clone()
	e := graph.Edge{
		ID:           idsOrDefault(ids).NewID(EdgePrefix),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
		Type:         defaults.Type,
		Animated:     defaults.Animated,
		Style:        defaults.Style,
		MarkerEnd:    defaults.MarkerEnd,
		Data:         graph.EdgeData{PathType: defaults.Data.PathType},
	}

	out := s.Clone()
	out.Edges = append(out.Edges, e)
	return out, e.ID, true
}

// UpdateEdge merges patch into edge id.
func UpdateEdge(s graph.State, id string, patch EdgePatch) (graph.State, bool) {
	return updateEdge(s, id, func(e *graph.Edge) { patch.apply(e) })
}

// DeleteEdge removes edge id.
func DeleteEdge(s graph.State, id string) (graph.State, bool) {
	idx := indexOfEdge(s.Edges, id)
	if idx < 0 {
		return s, false
	}
	out := s.Clone()
	out.Edges = append(out.Edges[:idx], out.Edges[idx+1:]...)
	return out, true
}

// ApplyDefaultEdgeStyleToAll merges the stroke, marker, animation, type and
// path type of defaults into every edge. Labels, handles and control points
// are kept.
func ApplyDefaultEdgeStyleToAll(s graph.State, defaults graph.DefaultEdgeOptions) (graph.State, bool) {
	if len(s.Edges) == 0 {
		return s, false
	}
	out := s.Clone()
	for i := range out.Edges {
		e := &out.Edges[i]
		if defaults.Style.Stroke != "" {
			e.Style.Stroke = defaults.Style.Stroke
		}
		if defaults.Style.StrokeWidth > 0 {
			e.Style.StrokeWidth = defaults.Style.StrokeWidth
		}
		e.Style.StrokeDasharray = defaults.Style.StrokeDasharray
		if defaults.MarkerEnd != nil {
			m := *defaults.MarkerEnd
			e.MarkerEnd = &m
		}
		e.Animated = defaults.Animated
		if defaults.Type != "" {
			e.Type = defaults.Type
		}
		if defaults.Data.PathType != "" {
			e.Data.PathType = defaults.Data.PathType
		}
	}
	return out, true
}
