// Package layout computes automatic layered layouts for diagrams.
//
// # Pipeline
//
// [Engine.Layout] follows the Sugiyama framework on top of pkg/dag:
//
//  1. One vertex per top-level node, in document order. Edges touching a
//     group child count as edges of the group. Self-loops, dangling and
//     parallel edges are dropped.
//  2. Cycles are broken by reversing DFS back edges.
//  3. Ranks are assigned by longest path; isolated nodes land in rank 0.
//  4. Edges spanning several ranks are split with dummy nodes.
//  5. Each rank is ordered by barycentric sweeps with transposition,
//     keeping the ordering with the fewest crossings.
//  6. Ranks sit at rank*(box+RankSep) along the rank axis. Along the cross
//     axis nodes are packed NodeSep apart, then pulled towards the median of
//     their neighbours without overlapping.
//  7. The result is shifted so the drawing starts at the origin, and every
//     centre is converted to a top-left position.
//
// [LR] puts ranks along x with handles left (in) and right (out); [TB] puts
// them along y with handles top and bottom.
//
// # Groups
//
// Only nodes without a parent are positioned. Children keep their
// positions, which are relative to their group and therefore stay valid.
//
// # Caching
//
// [CachedEngine] stores the computed positions in a cache.Cache keyed by the
// graph structure and the options.
package layout
