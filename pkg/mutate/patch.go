package mutate

import "github.com/matzehuels/archflow/pkg/graph"

// NodeDataPatch is a partial update of [graph.NodeData]. Nil fields are left
// alone. Style is merged key by key into the node's existing overrides.
type NodeDataPatch struct {
	Kind         *string               `json:"type,omitempty"`
	Label        *string               `json:"label,omitempty"`
	Description  *string               `json:"description,omitempty"`
	Namespace    *string               `json:"namespace,omitempty"`
	StepNumber   *string               `json:"stepNumber,omitempty"`
	AttachedNote *string               `json:"attachedNote,omitempty"`
	Style        *graph.StyleOverrides `json:"style,omitempty"`
}

func (p NodeDataPatch) apply(d *graph.NodeData) {
	setIf(&d.Kind, p.Kind)
	setIf(&d.Label, p.Label)
	setIf(&d.Description, p.Description)
	setIf(&d.Namespace, p.Namespace)
	setIf(&d.StepNumber, p.StepNumber)
	setIf(&d.AttachedNote, p.AttachedNote)
	if p.Style != nil {
		var base graph.StyleOverrides
		if d.Style != nil {
			base = *d.Style
		}
		merged := base.Merge(*p.Style)
		d.Style = &merged
	}
}

// EdgeStylePatch is a partial update of [graph.EdgeStyle]. An empty
// StrokeDasharray makes the edge solid.
type EdgeStylePatch struct {
	Stroke          *string  `json:"stroke,omitempty"`
	StrokeWidth     *float64 `json:"strokeWidth,omitempty"`
	StrokeDasharray *string  `json:"strokeDasharray,omitempty"`
}

// EdgeDataPatch is a partial update of [graph.EdgeData].
type EdgeDataPatch struct {
	PathType      *graph.PathType      `json:"pathType,omitempty"`
	ControlPoints *graph.ControlPoints `json:"controlPoints,omitempty"`
	LabelOffset   *graph.Position      `json:"labelOffset,omitempty"`
	ReadOnly      *bool                `json:"readOnly,omitempty"`
}

// EdgePatch is a partial update of an edge. MarkerEnd replaces the marker
// as a whole; Style and Data are merged key by key.
type EdgePatch struct {
	Label     *string         `json:"label,omitempty"`
	Type      *string         `json:"type,omitempty"`
	Animated  *bool           `json:"animated,omitempty"`
	Style     *EdgeStylePatch `json:"style,omitempty"`
	MarkerEnd *graph.Marker   `json:"markerEnd,omitempty"`
	Data      *EdgeDataPatch  `json:"data,omitempty"`
}

func (p EdgePatch) apply(e *graph.Edge) {
	setIf(&e.Label, p.Label)
	setIf(&e.Type, p.Type)
	setIf(&e.Animated, p.Animated)
	if s := p.Style; s != nil {
		setIf(&e.Style.Stroke, s.Stroke)
		setIf(&e.Style.StrokeWidth, s.StrokeWidth)
		setIf(&e.Style.StrokeDasharray, s.StrokeDasharray)
	}
	if p.MarkerEnd != nil {
		m := *p.MarkerEnd
		e.MarkerEnd = &m
	}
	if d := p.Data; d != nil {
		setIf(&e.Data.PathType, d.PathType)
		setIf(&e.Data.ReadOnly, d.ReadOnly)
		if d.ControlPoints != nil {
			cp := *d.ControlPoints
			e.Data.ControlPoints = &cp
		}
		if d.LabelOffset != nil {
			off := *d.LabelOffset
			e.Data.LabelOffset = &off
		}
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
