package mutate_test

import (
	"fmt"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/mutate"
)

func Example() {
	s := graph.State{}
	s, gw := mutate.AddNode(s, "gateway", graph.Position{X: 0, Y: 0}, nil, nil)
	s, db := mutate.AddNode(s, "postgresql", graph.Position{X: 300, Y: 0}, nil, nil)
	s, _, _ = mutate.Connect(s, gw, db, "", "", graph.NewDefaultEdgeOptions(), nil)

	fmt.Println("Nodes:", len(s.Nodes), "Edges:", len(s.Edges))

	s, _ = mutate.DeleteNode(s, gw)
	fmt.Println("Nodes:", len(s.Nodes), "Edges:", len(s.Edges))
	// Output:
	// Nodes: 2 Edges: 1
	// Nodes: 1 Edges: 0
}

func ExampleReparent() {
	s := graph.State{Nodes: []graph.Node{
		{ID: "vpc", Type: graph.NodeTypeGroup, Position: graph.Position{X: 100, Y: 100}},
		{ID: "api", Type: graph.NodeTypeCustom, Position: graph.Position{X: 180, Y: 160}},
	}}

	s, _ = mutate.Reparent(s, "api", "vpc")
	api := graph.FindNode(s.Nodes, "api")
	fmt.Println("Parent:", api.ParentID, "Relative:", api.Position)

	s, _ = mutate.Reparent(s, "api", "")
	api = graph.FindNode(s.Nodes, "api")
	fmt.Println("Parent:", api.ParentID == "", "Absolute:", api.Position)
	// Output:
	// Parent: vpc Relative: {80 60}
	// Parent: true Absolute: {180 160}
}
