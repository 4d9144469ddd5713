package layout

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
)

func node(id string) graph.Node {
	return graph.Node{ID: id, Type: graph.NodeTypeCustom, Data: graph.NodeData{Kind: graph.KindService, Label: id}}
}

func edge(id, from, to string) graph.Edge {
	return graph.Edge{ID: id, Source: from, Target: to}
}

func positions(nodes []graph.Node) map[string]graph.Position {
	m := make(map[string]graph.Position, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n.Position
	}
	return m
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"LR", LR, false},
		{"lr", LR, false},
		{"", LR, false},
		{"TB", TB, false},
		{" tb ", TB, false},
		{"RL", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, %v, want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidDirection) {
			t.Errorf("ParseDirection(%q) code = %v", tt.in, errors.GetCode(err))
		}
	}
}

func TestLayout_LROrdersSourceBeforeTargets(t *testing.T) {
	nodes := []graph.Node{node("c"), node("a"), node("b")}
	edges := []graph.Edge{edge("e1", "a", "b"), edge("e2", "b", "c")}

	res, err := New(DefaultOptions()).Layout(context.Background(), nodes, edges, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	p := positions(res.Nodes)
	if !(p["a"].X < p["b"].X && p["b"].X < p["c"].X) {
		t.Errorf("x order = a:%v b:%v c:%v, want increasing", p["a"].X, p["b"].X, p["c"].X)
	}
	for _, n := range res.Nodes {
		if n.TargetPosition != graph.HandleLeft || n.SourcePosition != graph.HandleRight {
			t.Errorf("node %s handles = %s/%s, want left/right", n.ID, n.TargetPosition, n.SourcePosition)
		}
	}
}

func TestLayout_TBOrdersSourceAboveTargets(t *testing.T) {
	nodes := []graph.Node{node("lb"), node("api"), node("db")}
	edges := []graph.Edge{edge("e1", "lb", "api"), edge("e2", "api", "db")}

	res, err := New(DefaultOptions()).Layout(context.Background(), nodes, edges, TB)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	p := positions(res.Nodes)
	if !(p["lb"].Y < p["api"].Y && p["api"].Y < p["db"].Y) {
		t.Errorf("y order = %v, want increasing", p)
	}
	for _, n := range res.Nodes {
		if n.TargetPosition != graph.HandleTop || n.SourcePosition != graph.HandleBottom {
			t.Errorf("node %s handles = %s/%s, want top/bottom", n.ID, n.TargetPosition, n.SourcePosition)
		}
	}
}

func TestLayout_DefaultSpacing(t *testing.T) {
	nodes := []graph.Node{node("a"), node("b")}
	edges := []graph.Edge{edge("e1", "a", "b")}

	res, err := New(Options{}).Layout(context.Background(), nodes, edges, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	want := map[string]graph.Position{
		"a": {X: 0, Y: 0},
		"b": {X: 240 + 250, Y: 0},
	}
	if diff := cmp.Diff(want, positions(res.Nodes)); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_CyclesNeverFail(t *testing.T) {
	tests := []struct {
		name  string
		edges []graph.Edge
	}{
		{"two cycle", []graph.Edge{edge("e1", "a", "b"), edge("e2", "b", "a")}},
		{"triangle", []graph.Edge{edge("e1", "a", "b"), edge("e2", "b", "c"), edge("e3", "c", "a")}},
		{"self loop", []graph.Edge{edge("e1", "a", "a"), edge("e2", "a", "b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := []graph.Node{node("a"), node("b"), node("c")}
			res, err := New(DefaultOptions()).Layout(context.Background(), nodes, tt.edges, LR)
			if err != nil {
				t.Fatalf("Layout() error: %v", err)
			}
			if len(res.Nodes) != 3 || len(res.Edges) != len(tt.edges) {
				t.Errorf("Layout() returned %d nodes, %d edges", len(res.Nodes), len(res.Edges))
			}
			assertNoOverlap(t, res.Nodes)
		})
	}
}

func TestLayout_IsolatedNodesArePlaced(t *testing.T) {
	nodes := []graph.Node{node("note1"), node("note2"), node("note3")}

	res, err := New(DefaultOptions()).Layout(context.Background(), nodes, nil, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	for _, n := range res.Nodes {
		if n.Position.X != 0 {
			t.Errorf("isolated %s x = %v, want rank 0", n.ID, n.Position.X)
		}
	}
	assertNoOverlap(t, res.Nodes)
}

func TestLayout_FanOutHasNoOverlap(t *testing.T) {
	nodes := []graph.Node{node("lb"), node("s1"), node("s2"), node("s3"), node("s4")}
	edges := []graph.Edge{
		edge("e1", "lb", "s1"), edge("e2", "lb", "s2"),
		edge("e3", "lb", "s3"), edge("e4", "lb", "s4"),
	}

	res, err := New(DefaultOptions()).Layout(context.Background(), nodes, edges, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	assertNoOverlap(t, res.Nodes)
	if res.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", res.Crossings)
	}

	p := positions(res.Nodes)
	mid := (p["s1"].Y + p["s4"].Y) / 2
	if math.Abs(p["lb"].Y-mid) > 1 {
		t.Errorf("lb y = %v, want centred on its targets (%v)", p["lb"].Y, mid)
	}
}

func TestLayout_GroupChildrenKeepRelativePositions(t *testing.T) {
	grp := graph.Node{ID: "grp", Type: graph.NodeTypeGroup, Data: graph.NodeData{Kind: graph.KindGroup}}
	child := node("child")
	child.ParentID = "grp"
	child.Position = graph.Position{X: 15, Y: 25}
	nodes := []graph.Node{node("gw"), grp, child}
	edges := []graph.Edge{edge("e1", "gw", "child")}

	res, err := New(DefaultOptions()).Layout(context.Background(), nodes, edges, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	p := positions(res.Nodes)
	if p["child"] != (graph.Position{X: 15, Y: 25}) {
		t.Errorf("child position = %v, want unchanged", p["child"])
	}
	if !(p["gw"].X < p["grp"].X) {
		t.Errorf("gw x %v should precede group x %v via the child edge", p["gw"].X, p["grp"].X)
	}
	for _, n := range res.Nodes {
		if n.TargetPosition != graph.HandleLeft || n.SourcePosition != graph.HandleRight {
			t.Errorf("node %s handles = %s/%s, want left/right", n.ID, n.TargetPosition, n.SourcePosition)
		}
	}
}

func TestLayout_Empty(t *testing.T) {
	res, err := New(DefaultOptions()).Layout(context.Background(), nil, nil, TB)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if len(res.Nodes) != 0 || len(res.Edges) != 0 {
		t.Errorf("Layout(empty) = %+v, want empty", res)
	}
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	nodes := []graph.Node{node("a"), node("b")}
	nodes[0].Position = graph.Position{X: 999, Y: 999}
	edges := []graph.Edge{edge("e1", "a", "b")}
	before := graph.State{Nodes: nodes, Edges: edges}.Clone()

	if _, err := New(DefaultOptions()).Layout(context.Background(), nodes, edges, LR); err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	if diff := cmp.Diff(before, graph.State{Nodes: nodes, Edges: edges}); diff != "" {
		t.Errorf("Layout() mutated input:\n%s", diff)
	}
}

func TestLayout_Deterministic(t *testing.T) {
	nodes := []graph.Node{node("a"), node("b"), node("c"), node("d"), node("e")}
	edges := []graph.Edge{
		edge("1", "a", "c"), edge("2", "b", "c"), edge("3", "a", "d"),
		edge("4", "c", "e"), edge("5", "d", "e"), edge("6", "e", "a"),
	}
	engine := New(DefaultOptions())

	first, err := engine.Layout(context.Background(), nodes, edges, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, _ := engine.Layout(context.Background(), nodes, edges, LR)
		if diff := cmp.Diff(positions(first.Nodes), positions(again.Nodes)); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestLayout_InvalidDirection(t *testing.T) {
	_, err := New(DefaultOptions()).Layout(context.Background(), []graph.Node{node("a")}, nil, Direction("RL"))
	if !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Errorf("Layout(RL) error = %v, want INVALID_DIRECTION", err)
	}
}

func TestLayout_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(DefaultOptions()).Layout(ctx, []graph.Node{node("a")}, nil, LR); err == nil {
		t.Error("Layout() with cancelled context should fail")
	}
}

// assertNoOverlap checks that no two top-level boxes intersect.
func assertNoOverlap(t *testing.T, nodes []graph.Node) {
	t.Helper()
	const w, h = graph.DefaultNodeWidth, graph.DefaultNodeHeight
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if a.ParentID != "" || b.ParentID != "" {
				continue
			}
			if a.Position.X < b.Position.X+w && b.Position.X < a.Position.X+w &&
				a.Position.Y < b.Position.Y+h && b.Position.Y < a.Position.Y+h {
				t.Errorf("%s at %v overlaps %s at %v", a.ID, a.Position, b.ID, b.Position)
			}
		}
	}
}
