package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/archflow/pkg/dag"
)

func rowsOf(g *dag.DAG) map[string]int {
	rows := make(map[string]int)
	for _, n := range g.Nodes() {
		rows[n.ID] = n.Row
	}
	return rows
}

func TestAssignLayers(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  map[string]int
	}{
		{
			name:  "chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "longest path wins",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "isolated nodes are roots",
			nodes: []string{"note", "a", "b"},
			edges: [][2]string{{"a", "b"}},
			want:  map[string]int{"note": 0, "a": 0, "b": 1},
		},
		{
			name:  "fan out",
			nodes: []string{"lb", "s1", "s2"},
			edges: [][2]string{{"lb", "s1"}, {"lb", "s2"}},
			want:  map[string]int{"lb": 0, "s1": 1, "s2": 1},
		},
		{
			name:  "child inserted first",
			nodes: []string{"db", "svc", "gw"},
			edges: [][2]string{{"gw", "svc"}, {"svc", "db"}},
			want:  map[string]int{"gw": 0, "svc": 1, "db": 2},
		},
		{
			name:  "cycle left at zero",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  map[string]int{"a": 0, "b": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graphOf(t, tt.nodes, tt.edges)
			AssignLayers(g)
			if diff := cmp.Diff(tt.want, rowsOf(g)); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	g := graphOf(t,
		[]string{"gw", "svc", "cache", "db"},
		[][2]string{{"gw", "svc"}, {"svc", "cache"}, {"cache", "db"}, {"db", "gw"}, {"gw", "db"}},
	)

	reversed := Normalize(g)

	if len(reversed) != 0 {
		// db→gw has its reverse gw→db already, so it is dropped, not flipped.
		t.Errorf("Normalize() reversed %v, want none", reversed)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after Normalize() = %v", err)
	}
}

func TestNormalizeFlipsBackEdge(t *testing.T) {
	g := graphOf(t,
		[]string{"gw", "svc", "cache", "db"},
		[][2]string{{"gw", "svc"}, {"svc", "cache"}, {"cache", "db"}, {"db", "gw"}},
	)
	if got := len(Normalize(g)); got != 1 {
		t.Errorf("Normalize() reversed %d edges, want 1", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after Normalize() = %v", err)
	}
}
