package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/archflow/pkg/dag"
)

func rankedGraph(t *testing.T, rows map[string]int, order []string, edges []dag.Edge) *dag.DAG {
	t.Helper()
	g := dag.New()
	for _, id := range order {
		if err := g.AddNode(dag.Node{ID: id, Row: rows[id]}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestSubdivide(t *testing.T) {
	tests := []struct {
		name        string
		rows        map[string]int
		order       []string
		edges       []dag.Edge
		wantNodes   int
		wantEdges   int
		wantDummies []string
	}{
		{
			name:        "long edge",
			rows:        map[string]int{"gw": 0, "pg": 3},
			order:       []string{"gw", "pg"},
			edges:       []dag.Edge{{From: "gw", To: "pg"}},
			wantNodes:   4,
			wantEdges:   3,
			wantDummies: []string{"gw_dummy_1", "gw_dummy_2"},
		},
		{
			name:      "short edges untouched",
			rows:      map[string]int{"a": 0, "b": 1, "c": 2},
			order:     []string{"a", "b", "c"},
			edges:     []dag.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
			wantNodes: 3,
			wantEdges: 2,
		},
		{
			name:        "id collision",
			rows:        map[string]int{"a": 0, "a_dummy_1": 5, "b": 2},
			order:       []string{"a", "a_dummy_1", "b"},
			edges:       []dag.Edge{{From: "a", To: "b"}},
			wantNodes:   4,
			wantEdges:   2,
			wantDummies: []string{"a_dummy_1__1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := rankedGraph(t, tt.rows, tt.order, tt.edges)
			Subdivide(g)

			if g.NodeCount() != tt.wantNodes || g.EdgeCount() != tt.wantEdges {
				t.Errorf("got %d nodes, %d edges, want %d and %d", g.NodeCount(), g.EdgeCount(), tt.wantNodes, tt.wantEdges)
			}
			var dummies []string
			for _, n := range g.Nodes() {
				if n.IsDummy() {
					dummies = append(dummies, n.ID)
					if n.MasterID != tt.edges[0].From {
						t.Errorf("dummy %s master = %q, want %q", n.ID, n.MasterID, tt.edges[0].From)
					}
				}
			}
			if !slices.Equal(dummies, tt.wantDummies) {
				t.Errorf("dummies = %v, want %v", dummies, tt.wantDummies)
			}
		})
	}
}

func TestSubdivideValidates(t *testing.T) {
	g := rankedGraph(t,
		map[string]int{"lb": 0, "api": 1, "cache": 2, "db": 3},
		[]string{"lb", "api", "cache", "db"},
		[]dag.Edge{{From: "lb", To: "api"}, {From: "api", To: "cache"}, {From: "cache", To: "db"}, {From: "lb", To: "db"}, {From: "api", To: "db"}},
	)
	Subdivide(g)
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSubdivideCarriesReversed(t *testing.T) {
	g := rankedGraph(t, map[string]int{"a": 0, "b": 2}, []string{"a", "b"},
		[]dag.Edge{{From: "a", To: "b", Reversed: true}})
	Subdivide(g)
	for _, e := range g.Edges() {
		if !e.Reversed {
			t.Errorf("segment %s→%s lost Reversed", e.From, e.To)
		}
	}
}
