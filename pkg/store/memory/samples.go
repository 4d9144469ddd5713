package memory

import (
	"time"

	"github.com/matzehuels/archflow/pkg/graph"
)

// Sample is a seeded workflow and its document.
type Sample struct {
	Workflow graph.Workflow
	Document *graph.Document
}

// Samples returns the demo workflows, timestamped relative to now. Only the
// first one carries a diagram.
func Samples(now time.Time) []Sample {
	wf := func(id, name, desc string, age time.Duration) graph.Workflow {
		return graph.Workflow{ID: id, Name: name, Description: desc, UpdatedAt: now.Add(-age).UTC()}
	}
	return []Sample{
		{
			Workflow: wf("wf-1", "Instant Ticket Sales",
				"Core sales flow for instant tickets, with inventory management and real-time charging.",
				10*time.Minute),
			Document: orderSystem(),
		},
		{
			Workflow: wf("wf-2", "Draw Ticket Sales",
				"Betting, ticket issuing and transaction confirmation for lotto and numbers games.",
				2*time.Hour),
			Document: graph.NewDocument(),
		},
		{
			Workflow: wf("wf-3", "Weekly Draw",
				"Scheduled drawing, number sealing and automated prize calculation.",
				24*time.Hour),
			Document: graph.NewDocument(),
		},
		{
			Workflow: wf("wf-4", "Rapid Draw",
				"High-frequency draw data processing and multi-tier prize payout.",
				72*time.Hour),
			Document: graph.NewDocument(),
		},
	}
}

func orderSystem() *graph.Document {
	node := func(id, kind, label, desc string, x, y float64) graph.Node {
		return graph.Node{
			ID:       id,
			Type:     graph.NodeTypeCustom,
			Position: graph.Position{X: x, Y: y},
			Data:     graph.NodeData{Kind: kind, Label: label, Description: desc},
		}
	}
	edge := func(id, src, tgt string) graph.Edge {
		return graph.Edge{ID: id, Source: src, Target: tgt, Animated: true, Type: string(graph.PathSmoothStep)}
	}
	return &graph.Document{
		Nodes: []graph.Node{
			node("1", "gateway", "API Gateway", "Entry point for all client requests", 50, 150),
			node("2", graph.KindService, "Auth Service", "Handles JWT authentication", 350, 50),
			node("3", graph.KindService, "Order Service", "Process customer orders", 350, 250),
		},
		Edges: []graph.Edge{
			edge("e1-2", "1", "2"),
			edge("e1-3", "1", "3"),
		},
	}
}
