package layout

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archflow/pkg/dag"
	"github.com/matzehuels/archflow/pkg/dag/ordering"
	"github.com/matzehuels/archflow/pkg/dag/transform"
	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/observability"
)

// Direction is the axis ranks are laid out along.
type Direction string

const (
	// LR places ranks left to right; edges enter on the left and leave on
	// the right.
	LR Direction = "LR"
	// TB places ranks top to bottom; edges enter on top and leave at the
	// bottom.
	TB Direction = "TB"
)

// ParseDirection accepts "LR" or "TB" in any case. The empty string means LR.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(LR):
		return LR, nil
	case string(TB):
		return TB, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "unknown layout direction %q (want LR or TB)", s)
}

// Handles returns the target and source handle sides for d.
func (d Direction) Handles() (target, source graph.Handle) {
	if d == TB {
		return graph.HandleTop, graph.HandleBottom
	}
	return graph.HandleLeft, graph.HandleRight
}

// Options controls the spacing of the layered layout.
type Options struct {
	NodeWidth  float64 // box width used for every node
	NodeHeight float64 // box height used for every node
	RankSep    float64 // gap between consecutive ranks
	NodeSep    float64 // gap between neighbours within a rank
	Iterations int     // ordering sweeps and coordinate passes

	Logger *log.Logger
}

// DefaultOptions returns the spacing the editor uses.
func DefaultOptions() Options {
	return Options{
		NodeWidth:  graph.DefaultNodeWidth,
		NodeHeight: graph.DefaultNodeHeight,
		RankSep:    250,
		NodeSep:    80,
		Iterations: ordering.DefaultPasses,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.RankSep <= 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep <= 0 {
		o.NodeSep = d.NodeSep
	}
	if o.Iterations <= 0 {
		o.Iterations = d.Iterations
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Result is the outcome of a layout run.
type Result struct {
	Nodes     []graph.Node
	Edges     []graph.Edge
	Crossings int // edge crossings of the chosen ordering, dummies included
	Reversed  int // edges flipped to break cycles
}

// Layouter computes positions for a diagram. [Engine] and [CachedEngine]
// implement it.
type Layouter interface {
	Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) (Result, error)
}

// Engine is the layered (Sugiyama) layout engine. It is stateless and safe
// for concurrent use.
type Engine struct {
	opts    Options
	orderer ordering.ContextOrderer
}

// New creates an engine. Zero option fields take their defaults.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:    opts,
		orderer: ordering.Exhaustive{Base: ordering.Barycentric{Passes: opts.Iterations}},
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Layout positions the top-level nodes and returns copies of all nodes and
// edges. Children of groups keep their relative positions. Cycles,
// self-loops and isolated nodes are all accepted; the only error is an
// invalid direction or a cancelled context.
func (e *Engine) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) (Result, error) {
	pos, stats, err := e.Compute(ctx, nodes, edges, dir)
	if err != nil {
		return Result{}, err
	}
	s := graph.State{Nodes: nodes, Edges: edges}.Clone()
	return Result{
		Nodes:     Apply(s.Nodes, pos, dir),
		Edges:     s.Edges,
		Crossings: stats.Crossings,
		Reversed:  stats.Reversed,
	}, nil
}

// Stats summarizes a computation.
type Stats struct {
	Crossings int `json:"crossings"`
	Reversed  int `json:"reversed"`
}

// Positions maps node IDs to top-left positions.
type Positions map[string]graph.Position

// Compute runs the pipeline and returns the new top-left position of every
// top-level node.
func (e *Engine) Compute(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) (pos Positions, stats Stats, err error) {
	if dir != LR && dir != TB {
		return nil, Stats{}, errors.New(errors.ErrCodeInvalidDirection, "unknown layout direction %q (want LR or TB)", dir)
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, string(dir), len(nodes))
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, string(dir), stats.Crossings, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	g := buildDAG(nodes, edges)
	if g.NodeCount() == 0 {
		return Positions{}, Stats{}, nil
	}

	reversed := transform.Normalize(g)
	orders := e.orderer.OrderRowsContext(ctx, g)
	stats = Stats{
		Crossings: dag.CountCrossings(g, orders),
		Reversed:  len(reversed),
	}

	pos = e.assignCoordinates(g, orders, dir)

	e.opts.Logger.Debug("layout computed",
		"direction", dir,
		"nodes", len(pos),
		"ranks", g.RowCount(),
		"dummies", g.NodeCount()-len(pos),
		"reversed", stats.Reversed,
		"crossings", stats.Crossings,
	)
	return pos, stats, nil
}

// Apply writes pos into nodes, which it modifies in place and returns. The
// handle sides for dir are set on every node, group children included; only
// nodes present in pos move.
func Apply(nodes []graph.Node, pos Positions, dir Direction) []graph.Node {
	target, source := dir.Handles()
	for i := range nodes {
		nodes[i].TargetPosition = target
		nodes[i].SourcePosition = source
		if p, ok := pos[nodes[i].ID]; ok {
			nodes[i].Position = p
		}
	}
	return nodes
}

// buildDAG creates one vertex per top-level node, in document order. An
// edge touching a group child is attributed to the child's group. Self-loops,
// dangling edges and parallel edges are dropped.
func buildDAG(nodes []graph.Node, edges []graph.Edge) *dag.DAG {
	g := dag.New()
	parent := make(map[string]string, len(nodes))
	for _, n := range nodes {
		parent[n.ID] = n.ParentID
	}
	for _, n := range nodes {
		if n.ParentID == "" {
			_ = g.AddNode(dag.Node{ID: n.ID})
		}
	}

	resolve := func(id string) (string, bool) {
		p, ok := parent[id]
		if !ok {
			return "", false
		}
		if p == "" {
			return id, true
		}
		if _, ok := g.Node(p); ok {
			return p, true
		}
		return "", false
	}

	seen := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		from, okF := resolve(e.Source)
		to, okT := resolve(e.Target)
		if !okF || !okT || from == to {
			continue
		}
		key := [2]string{from, to}
		if seen[key] {
			continue
		}
		seen[key] = true
		_ = g.AddEdge(dag.Edge{From: from, To: to})
	}
	return g
}

// assignCoordinates places ranks at fixed offsets along the rank axis and
// packs each rank along the cross axis, then pulls every node towards the
// median of its neighbours without breaking the ordering or the spacing.
func (e *Engine) assignCoordinates(g *dag.DAG, orders map[int][]string, dir Direction) Positions {
	rankBox, crossBox := e.opts.NodeWidth, e.opts.NodeHeight
	if dir == TB {
		rankBox, crossBox = e.opts.NodeHeight, e.opts.NodeWidth
	}

	size := func(id string) float64 {
		if n, ok := g.Node(id); ok && n.IsDummy() {
			return 0
		}
		return crossBox
	}
	gap := func(a, b string) float64 {
		return (size(a)+size(b))/2 + e.opts.NodeSep
	}

	rows := g.RowIDs()
	cross := make(map[string]float64, g.NodeCount())
	for _, r := range rows {
		c := 0.0
		for i, id := range orders[r] {
			if i > 0 {
				c += gap(orders[r][i-1], id)
			}
			cross[id] = c
		}
	}

	place := func(row []string, neighbours func(string) []string) {
		n := len(row)
		if n == 0 {
			return
		}
		desired := make([]float64, n)
		for i, id := range row {
			var ps []float64
			for _, nb := range neighbours(id) {
				ps = append(ps, cross[nb])
			}
			if len(ps) == 0 {
				desired[i] = cross[id]
				continue
			}
			desired[i] = median(ps)
		}

		left := make([]float64, n)
		right := make([]float64, n)
		left[0] = desired[0]
		for i := 1; i < n; i++ {
			left[i] = max(desired[i], left[i-1]+gap(row[i-1], row[i]))
		}
		right[n-1] = desired[n-1]
		for i := n - 2; i >= 0; i-- {
			right[i] = min(desired[i], right[i+1]-gap(row[i], row[i+1]))
		}
		for i, id := range row {
			cross[id] = (left[i] + right[i]) / 2
		}
	}

	for it := 0; it < e.opts.Iterations; it++ {
		if it%2 == 0 {
			for i := 1; i < len(rows); i++ {
				place(orders[rows[i]], g.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				place(orders[rows[i]], g.Children)
			}
		}
	}

	minEdge := 0.0
	first := true
	for _, n := range g.Nodes() {
		if n.IsDummy() {
			continue
		}
		if edge := cross[n.ID] - crossBox/2; first || edge < minEdge {
			minEdge, first = edge, false
		}
	}

	pos := make(Positions, g.NodeCount())
	for _, n := range g.Nodes() {
		if n.IsDummy() {
			continue
		}
		rankCentre := rankBox/2 + float64(n.Row)*(rankBox+e.opts.RankSep)
		crossCentre := cross[n.ID] - minEdge
		cx, cy := rankCentre, crossCentre
		if dir == TB {
			cx, cy = crossCentre, rankCentre
		}
		pos[n.ID] = graph.Position{
			X: cx - e.opts.NodeWidth/2,
			Y: cy - e.opts.NodeHeight/2,
		}
	}
	return pos
}

func median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return s[m]
	}
	return (s[m-1] + s[m]) / 2
}
