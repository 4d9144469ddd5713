package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/render/nodelink"
)

func ExampleToDOT() {
	doc := &graph.Document{
		Nodes: []graph.Node{
			{ID: "lb", Type: graph.NodeTypeCustom, Data: graph.NodeData{Kind: "loadBalancer", Label: "LB"}},
			{ID: "svc", Type: graph.NodeTypeCustom, Position: graph.Position{X: 300},
				Data: graph.NodeData{Kind: graph.KindService, Label: "Orders"}},
		},
		Edges: []graph.Edge{{ID: "e1", Source: "lb", Target: "svc"}},
	}

	for _, line := range strings.Split(nodelink.ToDOT(doc, nodelink.Options{}), "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "lb" -> "svc" [arrowhead=none];
}
