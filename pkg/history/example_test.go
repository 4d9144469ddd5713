package history_test

import (
	"fmt"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/history"
)

func ExampleManager() {
	h := history.New(history.Unlimited)
	h.Reset(graph.State{})

	h.Push(graph.State{Nodes: []graph.Node{{ID: "gateway"}}})
	h.Push(graph.State{Nodes: []graph.Node{{ID: "gateway"}, {ID: "orders"}}})

	prev, _ := h.Undo()
	fmt.Println("After undo:", len(prev.Nodes), "nodes")
	fmt.Println("Can redo:", h.CanRedo())

	next, _ := h.Redo()
	fmt.Println("After redo:", len(next.Nodes), "nodes")
	// Output:
	// After undo: 1 nodes
	// Can redo: true
	// After redo: 2 nodes
}
