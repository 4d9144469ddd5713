package graph_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/archflow/pkg/graph"
)

func ExampleDocument_Validate() {
	doc := graph.NewDocument()
	doc.Nodes = append(doc.Nodes, graph.Node{
		ID:   "orders",
		Type: graph.NodeTypeCustom,
		Data: graph.NodeData{Kind: graph.KindService, Label: "Orders"},
	})
	doc.Edges = append(doc.Edges, graph.Edge{ID: "e1", Source: "orders", Target: "ghost"})

	fmt.Println(doc.Validate())
	// Output:
	// edge "e1": target "ghost": edge references unknown node
}

func ExampleWriteDocument() {
	doc := graph.NewDocument()
	doc.Nodes = append(doc.Nodes, graph.Node{
		ID:       "kafka",
		Type:     graph.NodeTypeCustom,
		Position: graph.Position{X: 10, Y: 20},
		Data:     graph.NodeData{Kind: "kafka", Label: "Kafka"},
	})

	if err := graph.WriteDocument(doc, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "kafka",
	//       "type": "custom",
	//       "position": {
	//         "x": 10,
	//         "y": 20
	//       },
	//       "data": {
	//         "type": "kafka",
	//         "label": "Kafka"
	//       }
	//     }
	//   ],
	//   "edges": []
	// }
}

func ExampleResolveKind() {
	for _, t := range []string{"redis", "quantum"} {
		k := graph.ResolveKind(t)
		fmt.Println(k.Label, k.Category)
	}
	// Output:
	// Redis Database
	// Node Application
}
