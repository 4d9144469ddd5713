package memory

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
	"github.com/matzehuels/archflow/pkg/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, clock store.Clock) store.Store {
		return New(WithClock(clock))
	})
}

func TestCreate_SameMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1718000000000).UTC()
	s := New(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	a, _ := s.Create(ctx, "a", "")
	b, _ := s.Create(ctx, "b", "")

	if a.ID != "wf-1718000000000" {
		t.Errorf("first ID = %q, want wf-1718000000000", a.ID)
	}
	if b.ID != "wf-1718000000001" {
		t.Errorf("second ID = %q, want wf-1718000000001", b.ID)
	}
}

func TestSeed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	if err := s.Seed(Samples(now)); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	ctx := context.Background()

	all, _ := s.List(ctx, "")
	if len(all) != 4 || all[0].ID != "wf-1" || all[3].ID != "wf-4" {
		t.Fatalf("List() = %v, want wf-1..wf-4 newest first", all)
	}

	doc, err := s.Load(ctx, "wf-1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Errorf("wf-1 = %d nodes, %d edges, want 3 and 2", len(doc.Nodes), len(doc.Edges))
	}
	if err := (&graph.Document{Nodes: doc.Nodes, Edges: doc.Edges}).Validate(); err != nil {
		t.Errorf("sample document invalid: %v", err)
	}

	got, _ := s.List(ctx, "draw")
	if len(got) != 3 {
		t.Errorf("List(draw) = %d, want 3", len(got))
	}
}
