package graph

import "time"

// Position is a point on the canvas. For nodes with a parent it is relative
// to the parent's top-left corner; otherwise it is absolute.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position { return Position{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Position) Sub(q Position) Position { return Position{X: p.X - q.X, Y: p.Y - q.Y} }

// Handle names the side of a node where edges attach.
type Handle string

const (
	HandleLeft   Handle = "left"
	HandleRight  Handle = "right"
	HandleTop    Handle = "top"
	HandleBottom Handle = "bottom"
)

// NodeType selects how the front end renders a node.
type NodeType string

const (
	NodeTypeCustom NodeType = "custom"
	NodeTypeNote   NodeType = "note"
	NodeTypeGroup  NodeType = "group"
)

// Default geometry shared by the mutator and the layout engine.
const (
	DefaultNodeWidth     = 240.0
	DefaultNodeHeight    = 120.0
	DefaultGroupWidth    = 400.0
	DefaultGroupHeight   = 300.0
	CollapsedGroupHeight = 40.0
)

// NodeStyle holds the resize dimensions of a node. Zero means unset.
type NodeStyle struct {
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// Shape is the outline drawn for a custom node.
type Shape string

const (
	ShapeRounded Shape = "rounded"
	ShapeRect    Shape = "rect"
	ShapeCircle  Shape = "circle"
	ShapeDiamond Shape = "diamond"
)

// StyleOverrides are the per-node visual settings edited in the config panel.
// Empty strings and nil pointers mean "inherit the category default".
type StyleOverrides struct {
	Icon            string   `json:"icon,omitempty" bson:"icon,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty" bson:"backgroundColor,omitempty"`
	Color           string   `json:"color,omitempty" bson:"color,omitempty"`
	ContainerBg     string   `json:"containerBg,omitempty" bson:"containerBg,omitempty"`
	BorderColor     string   `json:"borderColor,omitempty" bson:"borderColor,omitempty"`
	BorderWidth     *float64 `json:"borderWidth,omitempty" bson:"borderWidth,omitempty"`
	BorderRadius    *float64 `json:"borderRadius,omitempty" bson:"borderRadius,omitempty"`
	LabelColor      string   `json:"labelColor,omitempty" bson:"labelColor,omitempty"`
	Shape           Shape    `json:"shape,omitempty" bson:"shape,omitempty"`
}

// Merge returns s with every field set in patch copied over it.
func (s StyleOverrides) Merge(patch StyleOverrides) StyleOverrides {
	mergeString(&s.Icon, patch.Icon)
	mergeString(&s.BackgroundColor, patch.BackgroundColor)
	mergeString(&s.Color, patch.Color)
	mergeString(&s.ContainerBg, patch.ContainerBg)
	mergeString(&s.BorderColor, patch.BorderColor)
	mergeString(&s.LabelColor, patch.LabelColor)
	if patch.Shape != "" {
		s.Shape = patch.Shape
	}
	if patch.BorderWidth != nil {
		s.BorderWidth = ptr(*patch.BorderWidth)
	}
	if patch.BorderRadius != nil {
		s.BorderRadius = ptr(*patch.BorderRadius)
	}
	return s
}

func (s StyleOverrides) clone() StyleOverrides {
	if s.BorderWidth != nil {
		s.BorderWidth = ptr(*s.BorderWidth)
	}
	if s.BorderRadius != nil {
		s.BorderRadius = ptr(*s.BorderRadius)
	}
	return s
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func ptr[T any](v T) *T { return &v }

// NodeData is the semantic payload of a node. Kind holds the registry kind
// ("service", "mysql", "group") and is serialized as "type".
type NodeData struct {
	Kind         string          `json:"type" bson:"type"`
	Label        string          `json:"label" bson:"label"`
	Description  string          `json:"description,omitempty" bson:"description,omitempty"`
	Namespace    string          `json:"namespace,omitempty" bson:"namespace,omitempty"`
	StepNumber   string          `json:"stepNumber,omitempty" bson:"stepNumber,omitempty"`
	AttachedNote string          `json:"attachedNote,omitempty" bson:"attachedNote,omitempty"`
	Style        *StyleOverrides `json:"style,omitempty" bson:"style,omitempty"`

	// Group state.
	Collapsed      bool    `json:"collapsed,omitempty" bson:"collapsed,omitempty"`
	ExpandedHeight float64 `json:"expandedHeight,omitempty" bson:"expandedHeight,omitempty"`
}

// Node is a diagram element. Width and Height are the sizes measured by the
// front end; Style carries the user-set resize dimensions.
type Node struct {
	ID             string     `json:"id" bson:"id"`
	Type           NodeType   `json:"type" bson:"type"`
	Position       Position   `json:"position" bson:"position"`
	ParentID       string     `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Hidden         bool       `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Selected       bool       `json:"selected,omitempty" bson:"selected,omitempty"`
	Data           NodeData   `json:"data" bson:"data"`
	Style          *NodeStyle `json:"style,omitempty" bson:"style,omitempty"`
	Width          float64    `json:"width,omitempty" bson:"width,omitempty"`
	Height         float64    `json:"height,omitempty" bson:"height,omitempty"`
	SourcePosition Handle     `json:"sourcePosition,omitempty" bson:"sourcePosition,omitempty"`
	TargetPosition Handle     `json:"targetPosition,omitempty" bson:"targetPosition,omitempty"`
}

// IsGroup reports whether the node can contain other nodes.
func (n *Node) IsGroup() bool { return n.Type == NodeTypeGroup }

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	if n.Style != nil {
		n.Style = ptr(*n.Style)
	}
	if n.Data.Style != nil {
		n.Data.Style = ptr(n.Data.Style.clone())
	}
	return n
}

// StyleWidth returns the resize width, or 0 when unset.
func (n *Node) StyleWidth() float64 {
	if n.Style == nil {
		return 0
	}
	return n.Style.Width
}

// StyleHeight returns the resize height, or 0 when unset.
func (n *Node) StyleHeight() float64 {
	if n.Style == nil {
		return 0
	}
	return n.Style.Height
}

// Size returns the node's extent for hit testing. Groups prefer the style
// dimensions over the measured ones; other nodes use the measured size. The
// defaults fill whatever is still unknown.
func (n *Node) Size() (w, h float64) {
	if n.IsGroup() {
		w = firstPositive(n.StyleWidth(), n.Width, DefaultGroupWidth)
		h = firstPositive(n.StyleHeight(), n.Height, DefaultGroupHeight)
		return w, h
	}
	w = firstPositive(n.Width, DefaultNodeWidth)
	h = firstPositive(n.Height, DefaultNodeHeight)
	return w, h
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

// PathType is the curve family used to draw an edge.
type PathType string

const (
	PathBezier     PathType = "bezier"
	PathStraight   PathType = "straight"
	PathStep       PathType = "step"
	PathSmoothStep PathType = "smoothstep"
)

// MarkerArrowClosed is the filled arrowhead marker type.
const MarkerArrowClosed = "arrowclosed"

// EdgeStyle is the stroke of an edge. An empty StrokeDasharray draws a solid
// line.
type EdgeStyle struct {
	Stroke          string  `json:"stroke,omitempty" bson:"stroke,omitempty"`
	StrokeWidth     float64 `json:"strokeWidth,omitempty" bson:"strokeWidth,omitempty"`
	StrokeDasharray string  `json:"strokeDasharray,omitempty" bson:"strokeDasharray,omitempty"`
}

// Marker decorates an edge end.
type Marker struct {
	Type  string `json:"type" bson:"type"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
}

// ControlPoints are the two user-dragged handles of a bezier edge.
type ControlPoints struct {
	ControlPoint1 Position `json:"controlPoint1" bson:"controlPoint1"`
	ControlPoint2 Position `json:"controlPoint2" bson:"controlPoint2"`
}

// EdgeData is the editor-specific payload of an edge.
type EdgeData struct {
	PathType      PathType       `json:"pathType,omitempty" bson:"pathType,omitempty"`
	ControlPoints *ControlPoints `json:"controlPoints,omitempty" bson:"controlPoints,omitempty"`
	LabelOffset   *Position      `json:"labelOffset,omitempty" bson:"labelOffset,omitempty"`
	ReadOnly      bool           `json:"readOnly,omitempty" bson:"readOnly,omitempty"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID           string    `json:"id" bson:"id"`
	Source       string    `json:"source" bson:"source"`
	Target       string    `json:"target" bson:"target"`
	SourceHandle string    `json:"sourceHandle,omitempty" bson:"sourceHandle,omitempty"`
	TargetHandle string    `json:"targetHandle,omitempty" bson:"targetHandle,omitempty"`
	Type         string    `json:"type,omitempty" bson:"type,omitempty"`
	Label        string    `json:"label,omitempty" bson:"label,omitempty"`
	Animated     bool      `json:"animated,omitempty" bson:"animated,omitempty"`
	Hidden       bool      `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Selected     bool      `json:"selected,omitempty" bson:"selected,omitempty"`
	Style        EdgeStyle `json:"style" bson:"style"`
	MarkerEnd    *Marker   `json:"markerEnd,omitempty" bson:"markerEnd,omitempty"`
	Data         EdgeData  `json:"data" bson:"data"`
}

// Clone returns a deep copy of e.
func (e Edge) Clone() Edge {
	if e.MarkerEnd != nil {
		e.MarkerEnd = ptr(*e.MarkerEnd)
	}
	if e.Data.ControlPoints != nil {
		e.Data.ControlPoints = ptr(*e.Data.ControlPoints)
	}
	if e.Data.LabelOffset != nil {
		e.Data.LabelOffset = ptr(*e.Data.LabelOffset)
	}
	return e
}

// DefaultEdgeData is the data subset carried by DefaultEdgeOptions.
type DefaultEdgeData struct {
	PathType PathType `json:"pathType,omitempty" bson:"pathType,omitempty"`
}

// DefaultEdgeOptions seed every new connection.
type DefaultEdgeOptions struct {
	Type      string          `json:"type" bson:"type"`
	Animated  bool            `json:"animated" bson:"animated"`
	Style     EdgeStyle       `json:"style" bson:"style"`
	MarkerEnd *Marker         `json:"markerEnd,omitempty" bson:"markerEnd,omitempty"`
	Data      DefaultEdgeData `json:"data" bson:"data"`
}

// DefaultEdgeColor is the slate stroke used by new diagrams.
const DefaultEdgeColor = "#94a3b8"

// NewDefaultEdgeOptions returns the options a fresh diagram starts with: a
// dashed slate smoothstep edge with a closed arrowhead.
func NewDefaultEdgeOptions() DefaultEdgeOptions {
	return DefaultEdgeOptions{
		Type:     string(PathSmoothStep),
		Animated: false,
		Style: EdgeStyle{
			Stroke:          DefaultEdgeColor,
			StrokeWidth:     1.5,
			StrokeDasharray: "5 5",
		},
		MarkerEnd: &Marker{Type: MarkerArrowClosed, Color: DefaultEdgeColor},
		Data:      DefaultEdgeData{PathType: PathSmoothStep},
	}
}

// WithStroke returns o with the stroke colour changed and the arrowhead
// recoloured to match.
func (o DefaultEdgeOptions) WithStroke(color string) DefaultEdgeOptions {
	o.Style.Stroke = color
	o.MarkerEnd = &Marker{Type: MarkerArrowClosed, Color: color}
	return o
}

// Clone returns a deep copy of o.
func (o DefaultEdgeOptions) Clone() DefaultEdgeOptions {
	if o.MarkerEnd != nil {
		o.MarkerEnd = ptr(*o.MarkerEnd)
	}
	return o
}

// State is the part of a document tracked by undo history.
type State struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of s. Nil slices become empty slices.
func (s State) Clone() State {
	out := State{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range s.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}

// Workflow is the metadata of one stored diagram.
type Workflow struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}
