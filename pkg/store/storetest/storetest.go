// Package storetest is the behaviour suite every [store.Store] backend runs
// in its own tests:
//
//	func TestStore(t *testing.T) {
//	    storetest.Run(t, func(t *testing.T, clock store.Clock) store.Store {
//	        return memory.New(memory.WithClock(clock))
//	    })
//	}
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
)

// Factory opens a fresh, empty store using clock for timestamps.
type Factory func(t *testing.T, clock store.Clock) store.Store

// Clock is a deterministic clock that advances one second per call.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"LoadUnknownIsEmpty", testLoadUnknown},
		{"CreateAndGet", testCreateAndGet},
		{"SaveLoadRoundTrip", testRoundTrip},
		{"LoadReturnsCopy", testLoadReturnsCopy},
		{"SaveUnknown", testSaveUnknown},
		{"SaveRefreshesUpdatedAt", testSaveRefreshes},
		{"ListFiltersAndOrders", testList},
		{"Rename", testRename},
		{"DeleteCascades", testDelete},
		{"CreateValidates", testCreateValidates},
		{"CreateUniqueIDs", testUniqueIDs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t, NewClock().Now)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

// SampleDocument returns a document exercising every stored field.
func SampleDocument() *graph.Document {
	width := 2.0
	opts := graph.NewDefaultEdgeOptions().WithStroke("#ef4444")
	return &graph.Document{
		Nodes: []graph.Node{
			{
				ID:       "vpc",
				Type:     graph.NodeTypeGroup,
				Position: graph.Position{X: 10, Y: 20},
				Style:    &graph.NodeStyle{Width: 400, Height: 300},
				Data:     graph.NodeData{Kind: graph.KindGroup, Label: "VPC"},
			},
			{
				ID:       "orders",
				Type:     graph.NodeTypeCustom,
				ParentID: "vpc",
				Position: graph.Position{X: 40, Y: 60},
				Width:    240,
				Height:   120,
				Data: graph.NodeData{
					Kind:        graph.KindService,
					Label:       "订单服务",
					Description: "Order service",
					StepNumber:  "1",
					Style:       &graph.StyleOverrides{Color: "#2563eb", BorderWidth: &width, Shape: graph.ShapeDiamond},
				},
			},
			{ID: "db", Type: graph.NodeTypeCustom, Position: graph.Position{X: 600, Y: 80}, Data: graph.NodeData{Kind: "mysql", Label: "Mysql"}},
		},
		Edges: []graph.Edge{{
			ID:        "e1",
			Source:    "orders",
			Target:    "db",
			Type:      "smoothstep",
			Label:     "SQL",
			Style:     graph.EdgeStyle{Stroke: "#ef4444", StrokeWidth: 1.5},
			MarkerEnd: &graph.Marker{Type: graph.MarkerArrowClosed, Color: "#ef4444"},
			Data: graph.EdgeData{
				PathType:      graph.PathBezier,
				ControlPoints: &graph.ControlPoints{ControlPoint2: graph.Position{X: 5, Y: 6}},
				LabelOffset:   &graph.Position{X: 1, Y: -1},
			},
		}},
		DefaultEdgeOptions: &opts,
	}
}

func create(t *testing.T, s store.Store, name, desc string) graph.Workflow {
	t.Helper()
	wf, err := s.Create(context.Background(), name, desc)
	if err != nil {
		t.Fatalf("Create(%q) error: %v", name, err)
	}
	return wf
}

func testLoadUnknown(t *testing.T, s store.Store) {
	doc, err := s.Load(context.Background(), "wf-404")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(doc.Nodes) != 0 || len(doc.Edges) != 0 || doc.Nodes == nil || doc.Edges == nil {
		t.Errorf("Load() = %+v, want empty non-nil slices", doc)
	}
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	wf := create(t, s, "Payments", "card flow")

	if !strings.HasPrefix(wf.ID, "wf-") {
		t.Errorf("ID = %q, want wf- prefix", wf.ID)
	}
	got, err := s.Get(ctx, wf.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "Payments" || got.Description != "card flow" || !got.UpdatedAt.Equal(wf.UpdatedAt) {
		t.Errorf("Get() = %+v, want %+v", got, wf)
	}

	doc, err := s.Load(ctx, wf.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(doc.Nodes) != 0 || doc.DefaultEdgeOptions != nil {
		t.Errorf("new workflow graph = %+v, want empty", doc)
	}

	if _, err := s.Get(ctx, "wf-404"); !errors.IsNotFound(err) {
		t.Errorf("Get(unknown) error = %v, want not found", err)
	}
}

func testRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	wf := create(t, s, "Orders", "")
	want := SampleDocument()

	if err := s.Save(ctx, wf.ID, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := s.Load(ctx, wf.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// A second save replaces the first.
	if err := s.Save(ctx, wf.ID, graph.NewDocument()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, _ = s.Load(ctx, wf.ID)
	if len(got.Nodes) != 0 || got.DefaultEdgeOptions != nil {
		t.Errorf("Load() after overwrite = %+v, want empty", got)
	}
}

func testLoadReturnsCopy(t *testing.T, s store.Store) {
	ctx := context.Background()
	wf := create(t, s, "Copy", "")
	doc := SampleDocument()
	if err := s.Save(ctx, wf.ID, doc); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	doc.Nodes[0].Data.Label = "changed after save"

	first, _ := s.Load(ctx, wf.ID)
	first.Nodes[0].Data.Label = "changed after load"
	second, _ := s.Load(ctx, wf.ID)
	if second.Nodes[0].Data.Label != "VPC" {
		t.Errorf("Label = %q, want VPC", second.Nodes[0].Data.Label)
	}
}

func testSaveUnknown(t *testing.T, s store.Store) {
	err := s.Save(context.Background(), "wf-404", SampleDocument())
	if !errors.IsNotFound(err) {
		t.Errorf("Save(unknown) error = %v, want not found", err)
	}
}

func testSaveRefreshes(t *testing.T, s store.Store) {
	ctx := context.Background()
	wf := create(t, s, "Refresh", "")
	if err := s.Save(ctx, wf.ID, SampleDocument()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, _ := s.Get(ctx, wf.ID)
	if !got.UpdatedAt.After(wf.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, wf.UpdatedAt)
	}
}

func testList(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := create(t, s, "Ticket Sales", "instant tickets")
	b := create(t, s, "Draw", "weekly TICKET draw")
	c := create(t, s, "Payouts", "prize payment")

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if diff := cmp.Diff([]string{c.ID, b.ID, a.ID}, ids(all)); diff != "" {
		t.Errorf("List(\"\") order (-want +got):\n%s", diff)
	}

	got, _ := s.List(ctx, "ticket")
	if diff := cmp.Diff([]string{b.ID, a.ID}, ids(got)); diff != "" {
		t.Errorf("List(ticket) (-want +got):\n%s", diff)
	}

	// Saving moves a workflow to the front.
	if err := s.Save(ctx, a.ID, graph.NewDocument()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, _ = s.List(ctx, "  TICKET ")
	if diff := cmp.Diff([]string{a.ID, b.ID}, ids(got)); diff != "" {
		t.Errorf("List after save (-want +got):\n%s", diff)
	}

	none, _ := s.List(ctx, "kafka")
	if none == nil || len(none) != 0 {
		t.Errorf("List(kafka) = %v, want empty non-nil", none)
	}
}

func testRename(t *testing.T, s store.Store) {
	ctx := context.Background()
	wf := create(t, s, "Old", "old description")

	got, err := s.Rename(ctx, wf.ID, "New", "")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if got.Name != "New" || got.Description != "" {
		t.Errorf("Rename() = %+v", got)
	}
	stored, _ := s.Get(ctx, wf.ID)
	if stored.Name != "New" {
		t.Errorf("Get().Name = %q, want New", stored.Name)
	}

	if _, err := s.Rename(ctx, "wf-404", "x", ""); !errors.IsNotFound(err) {
		t.Errorf("Rename(unknown) error = %v, want not found", err)
	}
	if _, err := s.Rename(ctx, wf.ID, " ", ""); !errors.IsInvalid(err) {
		t.Errorf("Rename(blank) error = %v, want invalid", err)
	}
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	wf := create(t, s, "Doomed", "")
	if err := s.Save(ctx, wf.ID, SampleDocument()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := s.Delete(ctx, wf.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, wf.ID); !errors.IsNotFound(err) {
		t.Errorf("Get() after Delete error = %v, want not found", err)
	}
	doc, err := s.Load(ctx, wf.ID)
	if err != nil || len(doc.Nodes) != 0 {
		t.Errorf("Load() after Delete = %d nodes, %v; want empty", len(doc.Nodes), err)
	}
	if err := s.Delete(ctx, wf.ID); !errors.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func testCreateValidates(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Create(ctx, "", "desc"); !errors.IsInvalid(err) {
		t.Errorf("Create(empty name) error = %v, want invalid", err)
	}
	if _, err := s.Create(ctx, "bad\x00name", ""); !errors.IsInvalid(err) {
		t.Errorf("Create(control char) error = %v, want invalid", err)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 0 {
		t.Errorf("List() = %d workflows after rejected creates, want 0", len(all))
	}
}

func testUniqueIDs(t *testing.T, s store.Store) {
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		wf := create(t, s, fmt.Sprintf("flow %d", i), "")
		if seen[wf.ID] {
			t.Fatalf("duplicate id %s", wf.ID)
		}
		seen[wf.ID] = true
	}
}

func ids(wfs []graph.Workflow) []string {
	out := []string{}
	for _, wf := range wfs {
		out = append(out, wf.ID)
	}
	return out
}
