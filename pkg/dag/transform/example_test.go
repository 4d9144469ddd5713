package transform_test

import (
	"fmt"

	"github.com/matzehuels/archflow/pkg/dag"
	"github.com/matzehuels/archflow/pkg/dag/transform"
)

func ExampleNormalize() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "gateway"})
	_ = g.AddNode(dag.Node{ID: "orders"})
	_ = g.AddNode(dag.Node{ID: "kafka"})
	_ = g.AddNode(dag.Node{ID: "postgres"})

	_ = g.AddEdge(dag.Edge{From: "gateway", To: "orders"})
	_ = g.AddEdge(dag.Edge{From: "orders", To: "kafka"})
	_ = g.AddEdge(dag.Edge{From: "kafka", To: "postgres"})
	_ = g.AddEdge(dag.Edge{From: "gateway", To: "postgres"}) // spans three ranks
	_ = g.AddEdge(dag.Edge{From: "postgres", To: "orders"})  // closes a cycle

	reversed := transform.Normalize(g)

	fmt.Println("Reversed:", len(reversed))
	fmt.Println("Rows:", g.RowCount())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Reversed: 1
	// Rows: 4
	// Valid: true
}

func ExampleAssignLayers() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "lb"})
	_ = g.AddNode(dag.Node{ID: "api"})
	_ = g.AddNode(dag.Node{ID: "redis"})
	_ = g.AddEdge(dag.Edge{From: "lb", To: "api"})
	_ = g.AddEdge(dag.Edge{From: "api", To: "redis"})

	transform.AssignLayers(g)

	for _, n := range g.Nodes() {
		fmt.Println(n.ID, n.Row)
	}
	// Output:
	// lb 0
	// api 1
	// redis 2
}
