package graph

// Category groups node kinds in the palette.
type Category string

const (
	CategoryGeneral       Category = "General"
	CategoryApplication   Category = "Application"
	CategoryDatabase      Category = "Database"
	CategoryStorage       Category = "Storage"
	CategoryMiddleware    Category = "Middleware"
	CategoryObservability Category = "Observability"
	CategoryCoordination  Category = "Coordination"
)

// Categories returns every category in palette order.
func Categories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryApplication,
		CategoryDatabase,
		CategoryStorage,
		CategoryMiddleware,
		CategoryObservability,
		CategoryCoordination,
	}
}

// Kind describes one entry of the node palette.
type Kind struct {
	Type        string         `json:"type"`
	Label       string         `json:"label"`
	Category    Category       `json:"category"`
	Icon        string         `json:"iconName"`
	Description string         `json:"description,omitempty"`
	Render      NodeType       `json:"render"`
	Style       StyleOverrides `json:"style"`
}

// Well-known kind identifiers referenced outside the registry.
const (
	KindNote    = "note"
	KindGroup   = "group"
	KindService = "service"
)

// FallbackLabel is used for nodes whose kind is not registered.
const FallbackLabel = "Node"

var categoryStyles = map[Category]StyleOverrides{
	CategoryGeneral:       baseStyle("#475569", "#f1f5f9"),
	CategoryApplication:   baseStyle("#2563eb", "#dbeafe"),
	CategoryDatabase:      baseStyle("#059669", "#d1fae5"),
	CategoryStorage:       baseStyle("#ea580c", "#ffedd5"),
	CategoryMiddleware:    baseStyle("#9333ea", "#f3e8ff"),
	CategoryObservability: baseStyle("#ca8a04", "#fef9c3"),
	CategoryCoordination:  baseStyle("#db2777", "#fce7f3"),
}

func baseStyle(color, containerBg string) StyleOverrides {
	return StyleOverrides{
		BackgroundColor: "#ffffff",
		Color:           color,
		ContainerBg:     containerBg,
		BorderColor:     "#e2e8f0",
		LabelColor:      "#0f172a",
		Shape:           ShapeRounded,
	}
}

func transparentStyle() StyleOverrides {
	s := categoryStyles[CategoryGeneral]
	s.ContainerBg = "transparent"
	return s
}

func groupStyle() StyleOverrides {
	s := categoryStyles[CategoryGeneral]
	s.BackgroundColor = "rgba(240, 244, 255, 0.3)"
	s.BorderColor = "#3b82f6"
	s.LabelColor = "#3b82f6"
	return s
}

var kinds = []Kind{
	{Type: KindNote, Label: "Note", Category: CategoryGeneral, Icon: "StickyNote", Render: NodeTypeNote},
	{Type: "step", Label: "Step", Category: CategoryGeneral, Icon: "Circle", Render: NodeTypeCustom, Style: transparentStyle()},
	{Type: "user", Label: "User", Category: CategoryGeneral, Icon: "User", Render: NodeTypeCustom, Style: transparentStyle()},
	{Type: "message", Label: "Message", Category: CategoryGeneral, Icon: "Mail", Render: NodeTypeCustom, Style: transparentStyle()},
	{Type: KindGroup, Label: "Group", Category: CategoryGeneral, Icon: "LayoutGrid", Render: NodeTypeGroup, Style: groupStyle()},

	{Type: "loadBalancer", Label: "LoadBalancer", Category: CategoryApplication, Icon: "Network", Render: NodeTypeCustom},
	{Type: "gateway", Label: "Gateway", Category: CategoryApplication, Icon: "Globe", Render: NodeTypeCustom},
	{Type: KindService, Label: "Service", Category: CategoryApplication, Icon: "Server", Render: NodeTypeCustom},

	{Type: "mysql", Label: "Mysql", Category: CategoryDatabase, Icon: "Database", Render: NodeTypeCustom},
	{Type: "postgresql", Label: "Postgresql", Category: CategoryDatabase, Icon: "Database", Render: NodeTypeCustom},
	{Type: "redis", Label: "Redis", Category: CategoryDatabase, Icon: "Layers", Render: NodeTypeCustom},
	{Type: "oceanbase", Label: "OceanBase", Category: CategoryDatabase, Icon: "Database", Render: NodeTypeCustom},

	{Type: "minio", Label: "MinIO", Category: CategoryStorage, Icon: "HardDrive", Render: NodeTypeCustom},

	{Type: "kafka", Label: "Kafka", Category: CategoryMiddleware, Icon: "Activity", Render: NodeTypeCustom},
	{Type: "rocketmq", Label: "RocketMQ", Category: CategoryMiddleware, Icon: "Activity", Render: NodeTypeCustom},

	{Type: "prometheus", Label: "Prometheus", Category: CategoryObservability, Icon: "Activity", Render: NodeTypeCustom},
	{Type: "grafana", Label: "Grafana", Category: CategoryObservability, Icon: "BarChart3", Render: NodeTypeCustom},
	{Type: "elasticsearch", Label: "ElasticSearch", Category: CategoryObservability, Icon: "Search", Render: NodeTypeCustom},

	{Type: "zookeeper", Label: "Zookeeper", Category: CategoryCoordination, Icon: "Share2", Render: NodeTypeCustom},
	{Type: "nacos", Label: "Nacos", Category: CategoryCoordination, Icon: "Share2", Render: NodeTypeCustom},
}

var kindIndex = func() map[string]int {
	m := make(map[string]int, len(kinds))
	for i, k := range kinds {
		m[k.Type] = i
	}
	return m
}()

// Kinds returns the palette in display order. The slice is a copy.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	for i, k := range kinds {
		out[i] = k.withStyle()
	}
	return out
}

// LookupKind returns the registered kind for t.
func LookupKind(t string) (Kind, bool) {
	i, ok := kindIndex[t]
	if !ok {
		return Kind{}, false
	}
	return kinds[i].withStyle(), true
}

// ResolveKind returns the registered kind for t, or a custom kind labelled
// FallbackLabel when t is unknown.
func ResolveKind(t string) Kind {
	if k, ok := LookupKind(t); ok {
		return k
	}
	return Kind{
		Type:     t,
		Label:    FallbackLabel,
		Category: CategoryApplication,
		Icon:     "Server",
		Render:   NodeTypeCustom,
		Style:    categoryStyles[CategoryApplication],
	}
}

// CategoryStyle returns the default style of a category.
func CategoryStyle(c Category) StyleOverrides {
	return categoryStyles[c]
}

// EffectiveStyle returns the style a node is drawn with: its kind default
// with the node's own overrides merged on top.
func EffectiveStyle(n *Node) StyleOverrides {
	s := ResolveKind(n.Data.Kind).Style
	if n.Data.Style != nil {
		s = s.Merge(*n.Data.Style)
	}
	return s
}

func (k Kind) withStyle() Kind {
	if k.Style == (StyleOverrides{}) {
		k.Style = categoryStyles[k.Category]
	}
	return k
}
