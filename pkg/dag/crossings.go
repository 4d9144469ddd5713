package dag

import "slices"

// CountCrossings sums [CountLayerCrossings] over every pair of consecutive
// rows. A row missing from orders counts as empty.
//
//	crossings := dag.CountCrossings(g, map[int][]string{
//	    0: {"gateway"},
//	    1: {"orders", "users"},
//	})
func CountCrossings(g *DAG, orders map[int][]string) int {
	total := 0
	for _, r := range g.RowIDs() {
		if lower, ok := orders[r+1]; ok {
			total += CountLayerCrossings(g, orders[r], lower)
		}
	}
	return total
}

// CountLayerCrossings counts the crossings between edges from upper to
// lower in O(E log E).
//
// Listing the edges by source position, with ties broken by target
// position, two edges cross exactly when their targets appear in the
// opposite order, so the answer is the number of inversions in that target
// sequence.
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	pos := PosMap(lower)

	var targets []int
	for _, u := range upper {
		start := len(targets)
		for _, c := range g.Children(u) {
			if p, ok := pos[c]; ok {
				targets = append(targets, p)
			}
		}
		slices.Sort(targets[start:])
	}
	return inversions(targets, make([]int, len(targets)))
}

// inversions counts pairs i < j with s[i] > s[j], sorting s in the process.
// buf must be at least as long as s.
func inversions(s, buf []int) int {
	if len(s) < 2 {
		return 0
	}
	mid := len(s) / 2
	n := inversions(s[:mid], buf[:mid]) + inversions(s[mid:], buf[mid:])

	merged := buf[:0]
	i, j := 0, mid
	for i < mid && j < len(s) {
		if s[j] < s[i] {
			merged = append(merged, s[j])
			n += mid - i
			j++
		} else {
			merged = append(merged, s[i])
			i++
		}
	}
	merged = append(merged, s[i:mid]...)
	merged = append(merged, s[j:]...)
	copy(s, merged)
	return n
}

// CountPairCrossings counts the crossings between the edges of left and
// right, two nodes of one row with left placed first, against the adjacent
// row adjOrder. useParents selects the row above instead of the one below.
// Comparing (l, r) with (r, l) tells whether swapping them helps.
func CountPairCrossings(g *DAG, left, right string, adjOrder []string, useParents bool) int {
	return CountPairCrossingsWithPos(g, left, right, PosMap(adjOrder), useParents)
}

// CountPairCrossingsWithPos is [CountPairCrossings] with the adjacent row
// given as a position map.
func CountPairCrossingsWithPos(g *DAG, left, right string, adjPos map[string]int, useParents bool) int {
	neighbours := g.Children
	if useParents {
		neighbours = g.Parents
	}

	n := 0
	for _, l := range neighbours(left) {
		lp, ok := adjPos[l]
		if !ok {
			continue
		}
		for _, r := range neighbours(right) {
			if rp, ok := adjPos[r]; ok && rp < lp {
				n++
			}
		}
	}
	return n
}
