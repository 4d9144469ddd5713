package editor_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/archflow/pkg/editor"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/layout"
	"github.com/matzehuels/archflow/pkg/store/memory"
)

func ExampleSession() {
	ctx := context.Background()
	st := memory.New()
	wf, _ := st.Create(ctx, "Checkout", "Payment flow")

	s, _ := editor.Open(ctx, st, wf.ID, editor.Options{})
	gw, _ := s.AddNode(ctx, "gateway", graph.Position{}, nil)
	svc, _ := s.AddNode(ctx, graph.KindService, graph.Position{}, nil)
	_, _ = s.Connect(ctx, gw, svc, "", "")
	_ = s.Layout(ctx, layout.LR)

	fmt.Println("dirty:", s.Dirty())
	_ = s.Save(ctx)
	fmt.Println("dirty:", s.Dirty())

	_, _ = s.Undo(ctx)
	snap := s.Snapshot()
	fmt.Println("nodes:", len(snap.Document.Nodes), "edges:", len(snap.Document.Edges))
	// Output:
	// dirty: true
	// dirty: false
	// nodes: 2 edges: 1
}
