package ordering

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/archflow/pkg/dag"
)

func buildLayered(t *testing.T, rows map[string]int, order []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New()
	for _, id := range order {
		if err := g.AddNode(dag.Node{ID: id, Row: rows[id]}); err != nil {
			t.Fatalf("AddNode(%s) = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%s, %s) = %v", e[0], e[1], err)
		}
	}
	return g
}

func TestBarycentric_RemovesAvoidableCrossings(t *testing.T) {
	tests := []struct {
		name  string
		rows  map[string]int
		order []string
		edges [][2]string
	}{
		{
			name:  "single cross",
			rows:  map[string]int{"a": 0, "b": 0, "x": 1, "y": 1},
			order: []string{"a", "b", "x", "y"},
			edges: [][2]string{{"a", "y"}, {"b", "x"}},
		},
		{
			name:  "three rows",
			rows:  map[string]int{"lb": 0, "api": 1, "web": 1, "pg": 2, "redis": 2},
			order: []string{"lb", "api", "web", "pg", "redis"},
			edges: [][2]string{{"lb", "api"}, {"lb", "web"}, {"api", "redis"}, {"web", "pg"}},
		},
		{
			name:  "reversed fan",
			rows:  map[string]int{"a": 0, "b": 0, "c": 0, "x": 1, "y": 1, "z": 1},
			order: []string{"a", "b", "c", "x", "y", "z"},
			edges: [][2]string{{"a", "z"}, {"b", "y"}, {"c", "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildLayered(t, tt.rows, tt.order, tt.edges)
			orders := Barycentric{}.OrderRows(g)
			if got := dag.CountCrossings(g, orders); got != 0 {
				t.Errorf("CountCrossings() = %d, want 0 (orders %v)", got, orders)
			}
		})
	}
}

func TestBarycentric_PreservesRowMembership(t *testing.T) {
	g := buildLayered(t,
		map[string]int{"a": 0, "b": 0, "c": 1, "d": 1, "e": 1},
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "e"}, {"b", "c"}, {"a", "d"}},
	)

	orders := Barycentric{Passes: 4}.OrderRows(g)

	for _, r := range g.RowIDs() {
		want := dag.NodeIDs(g.NodesInRow(r))
		got := slices.Clone(orders[r])
		slices.Sort(want)
		slices.Sort(got)
		if !slices.Equal(got, want) {
			t.Errorf("row %d = %v, want permutation of %v", r, orders[r], want)
		}
	}
}

func TestBarycentric_Deterministic(t *testing.T) {
	build := func() *dag.DAG {
		return buildLayered(t,
			map[string]int{"a": 0, "b": 0, "c": 1, "d": 1},
			[]string{"a", "b", "c", "d"},
			[][2]string{{"a", "c"}, {"a", "d"}, {"b", "c"}, {"b", "d"}},
		)
	}

	first := Barycentric{}.OrderRows(build())
	for i := 0; i < 5; i++ {
		got := Barycentric{}.OrderRows(build())
		for r, ids := range first {
			if !slices.Equal(got[r], ids) {
				t.Fatalf("run %d row %d = %v, want %v", i, r, got[r], ids)
			}
		}
	}
}

func TestBarycentric_SingleRow(t *testing.T) {
	g := buildLayered(t, map[string]int{"a": 0, "b": 0}, []string{"b", "a"}, nil)

	orders := Barycentric{}.OrderRows(g)

	if want := []string{"b", "a"}; !slices.Equal(orders[0], want) {
		t.Errorf("OrderRows()[0] = %v, want %v", orders[0], want)
	}
}

func TestBarycentric_CancelledContext(t *testing.T) {
	g := buildLayered(t,
		map[string]int{"a": 0, "b": 0, "x": 1, "y": 1},
		[]string{"a", "b", "x", "y"},
		[][2]string{{"a", "y"}, {"b", "x"}},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orders := Barycentric{}.OrderRowsContext(ctx, g)

	if want := []string{"x", "y"}; !slices.Equal(orders[1], want) {
		t.Errorf("OrderRowsContext()[1] = %v, want initial order %v", orders[1], want)
	}
}
