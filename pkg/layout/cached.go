package layout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/archflow/pkg/cache"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/observability"
)

// CachedEngine memoizes an [Engine] in a [cache.Cache]. Positions depend
// only on the node IDs, the group membership, the edge endpoints and the
// options, so moving or restyling nodes does not invalidate an entry.
type CachedEngine struct {
	engine *Engine
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
}

// NewCached wraps engine. A nil cache disables caching; a nil keyer uses
// [cache.NewDefaultKeyer].
func NewCached(engine *Engine, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedEngine {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedEngine{engine: engine, cache: c, keyer: keyer, ttl: ttl}
}

type cachedLayout struct {
	Positions Positions `json:"positions"`
	Stats     Stats     `json:"stats"`
}

type layoutInput struct {
	Nodes [][2]string `json:"nodes"` // id, parent
	Edges [][2]string `json:"edges"` // source, target
}

// Layout implements [Layouter].
func (c *CachedEngine) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) (Result, error) {
	key, err := c.Key(nodes, edges, dir)
	if err != nil {
		return c.engine.Layout(ctx, nodes, edges, dir)
	}
	hooks := observability.Cache()
	logger := c.engine.opts.Logger

	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		logger.Warn("layout cache read failed", "error", err)
	} else if ok {
		var entry cachedLayout
		if err := json.Unmarshal(data, &entry); err == nil {
			hooks.OnCacheHit(ctx, cache.KeyTypeLayout)
			s := graph.State{Nodes: nodes, Edges: edges}.Clone()
			return Result{
				Nodes:     Apply(s.Nodes, entry.Positions, dir),
				Edges:     s.Edges,
				Crossings: entry.Stats.Crossings,
				Reversed:  entry.Stats.Reversed,
			}, nil
		}
		logger.Warn("discarding corrupt layout cache entry", "key", key)
	}
	hooks.OnCacheMiss(ctx, cache.KeyTypeLayout)

	pos, stats, err := c.engine.Compute(ctx, nodes, edges, dir)
	if err != nil {
		return Result{}, err
	}

	if data, err := json.Marshal(cachedLayout{Positions: pos, Stats: stats}); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			logger.Warn("layout cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, cache.KeyTypeLayout, len(data))
		}
	}

	s := graph.State{Nodes: nodes, Edges: edges}.Clone()
	return Result{
		Nodes:     Apply(s.Nodes, pos, dir),
		Edges:     s.Edges,
		Crossings: stats.Crossings,
		Reversed:  stats.Reversed,
	}, nil
}

// Key returns the cache key for a layout request.
func (c *CachedEngine) Key(nodes []graph.Node, edges []graph.Edge, dir Direction) (string, error) {
	in := layoutInput{
		Nodes: make([][2]string, len(nodes)),
		Edges: make([][2]string, len(edges)),
	}
	for i, n := range nodes {
		in.Nodes[i] = [2]string{n.ID, n.ParentID}
	}
	for i, e := range edges {
		in.Edges[i] = [2]string{e.Source, e.Target}
	}
	h, err := cache.HashJSON(in)
	if err != nil {
		return "", err
	}
	o := c.engine.opts
	return c.keyer.LayoutKey(h, cache.LayoutKeyOpts{
		Direction:  string(dir),
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		RankSep:    o.RankSep,
		NodeSep:    o.NodeSep,
		Iterations: o.Iterations,
	}), nil
}
