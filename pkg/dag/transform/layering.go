package transform

import "github.com/matzehuels/archflow/pkg/dag"

// AssignLayers ranks every node by the longest path from a source: a node
// sits one rank below its deepest parent, and nodes without parents sit at
// rank 0. Existing rows are overwritten. Runs in O(V + E).
//
// g must be acyclic. Nodes on a cycle, and everything below them, are left
// at rank 0; run [ReverseCycles] or [BreakCycles] first.
func AssignLayers(g *dag.DAG) {
	rows := make(map[string]int, g.NodeCount())
	for _, id := range topoOrder(g) {
		r := 0
		for _, p := range g.Parents(id) {
			r = max(r, rows[p]+1)
		}
		rows[id] = r
	}
	for _, n := range g.Nodes() {
		if _, ok := rows[n.ID]; !ok {
			rows[n.ID] = 0
		}
	}
	g.SetRows(rows)
}

// topoOrder lists the nodes of g so that parents come before children,
// breaking ties by insertion order. Nodes on or below a cycle are omitted.
func topoOrder(g *dag.DAG) []string {
	waiting := make(map[string]int, g.NodeCount())
	order := make([]string, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		if waiting[n.ID] = g.InDegree(n.ID); waiting[n.ID] == 0 {
			order = append(order, n.ID)
		}
	}
	for i := 0; i < len(order); i++ {
		for _, c := range g.Children(order[i]) {
			if waiting[c]--; waiting[c] == 0 {
				order = append(order, c)
			}
		}
	}
	return order
}
