package layout

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/archflow/pkg/cache"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/observability"
)

type countingCacheHooks struct {
	observability.NoopCacheHooks
	mu           sync.Mutex
	hits, misses int
	sets         int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingCacheHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func TestCachedEngine(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	engine := NewCached(New(DefaultOptions()), fc, nil, 0)
	ctx := context.Background()

	nodes := []graph.Node{node("gw"), node("svc"), node("db")}
	edges := []graph.Edge{edge("e1", "gw", "svc"), edge("e2", "svc", "db")}

	first, err := engine.Layout(ctx, nodes, edges, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if hooks.misses != 1 || hooks.sets != 1 || hooks.hits != 0 {
		t.Fatalf("after first call hits=%d misses=%d sets=%d", hooks.hits, hooks.misses, hooks.sets)
	}

	// Moving a node does not change the key.
	nodes[0].Position = graph.Position{X: 500, Y: 500}
	second, err := engine.Layout(ctx, nodes, edges, LR)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if hooks.hits != 1 {
		t.Errorf("hits = %d, want 1", hooks.hits)
	}
	if diff := cmp.Diff(positions(first.Nodes), positions(second.Nodes)); diff != "" {
		t.Errorf("cached positions differ:\n%s", diff)
	}
	if second.Nodes[0].TargetPosition != graph.HandleLeft {
		t.Error("cached layout should still set handles")
	}

	// A different direction is a different entry.
	if _, err := engine.Layout(ctx, nodes, edges, TB); err != nil {
		t.Fatalf("Layout(TB) error: %v", err)
	}
	if hooks.misses != 2 {
		t.Errorf("misses = %d, want 2", hooks.misses)
	}
}

func TestCachedEngineKey(t *testing.T) {
	engine := NewCached(New(DefaultOptions()), nil, nil, 0)
	nodes := []graph.Node{node("a"), node("b")}
	edges := []graph.Edge{edge("e1", "a", "b")}

	base, err := engine.Key(nodes, edges, LR)
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}

	relabelled := graph.State{Nodes: nodes, Edges: edges}.Clone()
	relabelled.Nodes[0].Data.Label = "renamed"
	relabelled.Edges[0].Label = "calls"
	if k, _ := engine.Key(relabelled.Nodes, relabelled.Edges, LR); k != base {
		t.Error("labels should not affect the layout key")
	}

	rewired := []graph.Edge{edge("e1", "b", "a")}
	if k, _ := engine.Key(nodes, rewired, LR); k == base {
		t.Error("edge direction should affect the layout key")
	}

	nested := graph.State{Nodes: nodes, Edges: edges}.Clone()
	nested.Nodes[1].ParentID = "a"
	if k, _ := engine.Key(nested.Nodes, nested.Edges, LR); k == base {
		t.Error("group membership should affect the layout key")
	}
}
