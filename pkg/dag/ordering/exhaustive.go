package ordering

import (
	"context"
	"slices"

	"github.com/matzehuels/archflow/pkg/dag"
)

// DefaultMaxRow is the widest row Exhaustive permutes when MaxRow is zero.
// 7! = 5040 orderings per row.
const DefaultMaxRow = 7

// Exhaustive refines the ordering of a base orderer by trying every
// permutation of each row that has at most MaxRow nodes, holding the other
// rows fixed. A permutation replaces the current one only if it strictly
// lowers the crossings against the neighbouring rows, so the result is never
// worse than the base ordering and stays deterministic.
//
// Architecture diagrams rarely have wide ranks, so this usually finds a
// locally optimal ordering where the barycentre heuristic stalls.
type Exhaustive struct {
	// Base produces the starting ordering. Nil means Barycentric{}.
	Base ContextOrderer
	// MaxRow bounds the rows that are permuted. Zero means DefaultMaxRow.
	MaxRow int
}

// OrderRows implements [Orderer].
func (e Exhaustive) OrderRows(g *dag.DAG) map[int][]string {
	return e.OrderRowsContext(context.Background(), g)
}

// OrderRowsContext implements [ContextOrderer]. When ctx is cancelled the
// best ordering found so far is returned.
func (e Exhaustive) OrderRowsContext(ctx context.Context, g *dag.DAG) map[int][]string {
	base := e.Base
	if base == nil {
		base = Barycentric{}
	}
	maxRow := e.MaxRow
	if maxRow <= 0 {
		maxRow = DefaultMaxRow
	}

	orders := base.OrderRowsContext(ctx, g)
	rows := g.RowIDs()
	if len(rows) < 2 {
		return orders
	}

	// Sweep until a full pass changes nothing; each accepted permutation
	// strictly lowers the total, so this terminates.
	for improved := true; improved && ctx.Err() == nil; {
		improved = false
		for i, r := range rows {
			row := orders[r]
			if len(row) < 2 || len(row) > maxRow {
				continue
			}
			var above, below []string
			if i > 0 {
				above = orders[rows[i-1]]
			}
			if i < len(rows)-1 {
				below = orders[rows[i+1]]
			}
			if better, ok := bestPermutation(ctx, g, row, above, below); ok {
				orders[r] = better
				improved = true
			}
		}
	}
	return orders
}

// bestPermutation returns the ordering of row with the fewest crossings
// against above and below, or false if none beats row itself.
func bestPermutation(ctx context.Context, g *dag.DAG, row, above, below []string) ([]string, bool) {
	cost := func(r []string) int {
		c := 0
		if above != nil {
			c += dag.CountLayerCrossings(g, above, r)
		}
		if below != nil {
			c += dag.CountLayerCrossings(g, r, below)
		}
		return c
	}

	best := cost(row)
	if best == 0 {
		return nil, false
	}
	var bestRow []string
	cand := make([]string, len(row))
	permute(len(row), func(p []int) bool {
		for i, j := range p {
			cand[i] = row[j]
		}
		if c := cost(cand); c < best {
			best = c
			bestRow = slices.Clone(cand)
		}
		return best > 0 && ctx.Err() == nil
	})
	return bestRow, bestRow != nil
}

// permute calls fn with every permutation of 0..n-1, in Heap's order,
// until fn returns false. The slice passed to fn is reused between calls.
func permute(n int, fn func([]int) bool) {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	if !fn(p) {
		return
	}
	c := make([]int, n)
	for i := 1; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[c[i]], p[i] = p[i], p[c[i]]
			}
			if !fn(p) {
				return
			}
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
}
