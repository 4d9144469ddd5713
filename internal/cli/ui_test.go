package cli

import (
	"testing"
	"time"

	"github.com/matzehuels/archflow/pkg/graph"
)

func TestStatsString(t *testing.T) {
	doc := &graph.Document{
		Nodes: []graph.Node{
			{ID: "g", Type: graph.NodeTypeGroup},
			{ID: "a", Type: graph.NodeTypeCustom},
			{ID: "b", Type: graph.NodeTypeCustom, ParentID: "g", Hidden: true},
		},
		Edges: []graph.Edge{{ID: "e", Source: "a", Target: "b"}},
	}

	tests := []struct {
		name string
		doc  *graph.Document
		want string
	}{
		{"empty", graph.NewDocument(), "empty"},
		{"mixed", doc, "1 node · 1 group · 1 edge · 1 hidden node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statsOf(tt.doc).String(); got != tt.want {
				t.Errorf("statsOf().String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "—"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-10 * time.Minute), "10m ago"},
		{now.Add(-2 * time.Hour), "2h ago"},
		{now.Add(-72 * time.Hour), "3d ago"},
		{now.Add(-30 * 24 * time.Hour), "Feb 8, 2026"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t, now); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("ticket issuing", 7); got != "ticket…" {
		t.Errorf("truncate() = %q, want %q", got, "ticket…")
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		flag, path string
		want       string
		wantErr    bool
	}{
		{"", "out.svg", "svg", false},
		{"", "OUT.PNG", "png", false},
		{"dot", "out.txt", "dot", false},
		{"", "out", "", true},
		{"gif", "out.svg", "", true},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.flag, tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("outputFormat(%q, %q) = %q, %v; want %q, err=%v", tt.flag, tt.path, got, err, tt.want, tt.wantErr)
		}
	}
}
