package ordering

import (
	"context"
	"maps"
	"slices"

	"github.com/matzehuels/archflow/pkg/dag"
)

// Orderer determines the sequence of nodes within each row of a layered
// graph so that edges between consecutive rows cross as little as possible.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// ContextOrderer is an Orderer that supports cancellation via a context.
type ContextOrderer interface {
	Orderer
	OrderRowsContext(ctx context.Context, g *dag.DAG) map[int][]string
}

// DefaultPasses is the number of sweeps used when Barycentric.Passes is zero.
const DefaultPasses = 8

// Barycentric is the classic Sugiyama barycentre heuristic with adjacent
// transposition. Each pass sweeps in one direction, alternating top-down and
// bottom-up, and the ordering with the fewest crossings seen is returned.
//
// The initial ordering is node insertion order, so the result is
// deterministic for a given graph.
type Barycentric struct {
	// Passes is the number of sweeps. Zero means DefaultPasses.
	Passes int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	return b.OrderRowsContext(context.Background(), g)
}

// OrderRowsContext implements [ContextOrderer]. When ctx is cancelled the
// best ordering found so far is returned.
func (b Barycentric) OrderRowsContext(ctx context.Context, g *dag.DAG) map[int][]string {
	rows := g.RowIDs()
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	if len(rows) < 2 {
		return orders
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		if ctx.Err() != nil {
			break
		}
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], dag.PosMap(orders[rows[i-1]]), g.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], dag.PosMap(orders[rows[i+1]]), g.Children)
			}
		}
		transpose(g, rows, orders)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best
}

// sortByBarycenter orders row by the mean position of each node's neighbours
// in the adjacent row. Nodes without neighbours there keep their current
// index as key, and ties keep their current relative order.
func sortByBarycenter(row []string, adjPos map[string]int, neighbours func(string) []string) []string {
	keys := make(map[string]float64, len(row))
	for i, id := range row {
		sum, n := 0, 0
		for _, nb := range neighbours(id) {
			if p, ok := adjPos[nb]; ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
			continue
		}
		keys[id] = float64(sum) / float64(n)
	}

	out := slices.Clone(row)
	slices.SortStableFunc(out, func(a, b string) int {
		switch ka, kb := keys[a], keys[b]; {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return out
}

// transpose swaps adjacent nodes while doing so strictly lowers the
// crossings against both neighbouring rows.
func transpose(g *dag.DAG, rows []int, orders map[int][]string) {
	for improved := true; improved; {
		improved = false
		for i, r := range rows {
			var above, below map[string]int
			if i > 0 {
				above = dag.PosMap(orders[rows[i-1]])
			}
			if i < len(rows)-1 {
				below = dag.PosMap(orders[rows[i+1]])
			}

			row := orders[r]
			for j := 0; j+1 < len(row); j++ {
				u, v := row[j], row[j+1]
				if pairCost(g, v, u, above, below) < pairCost(g, u, v, above, below) {
					row[j], row[j+1] = v, u
					improved = true
				}
			}
		}
	}
}

func pairCost(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := maps.Clone(orders)
	for r, ids := range out {
		out[r] = slices.Clone(ids)
	}
	return out
}
