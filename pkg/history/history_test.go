package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/archflow/pkg/graph"
)

func state(ids ...string) graph.State {
	s := graph.State{}.Clone()
	for _, id := range ids {
		s.Nodes = append(s.Nodes, graph.Node{ID: id, Type: graph.NodeTypeCustom})
	}
	return s
}

func ids(s graph.State) []string {
	out := []string{}
	for _, n := range s.Nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestReset(t *testing.T) {
	m := New(Unlimited)
	m.Push(state("a"))
	m.Push(state("a", "b"))

	m.Reset(state("x"))

	if m.Len() != 1 || m.Index() != 0 {
		t.Fatalf("Len() = %d, Index() = %d, want 1, 0", m.Len(), m.Index())
	}
	if m.CanUndo() || m.CanRedo() {
		t.Error("fresh history should not undo or redo")
	}
	if diff := cmp.Diff([]string{"x"}, ids(m.Current())); diff != "" {
		t.Errorf("Current() mismatch (-want +got):\n%s", diff)
	}
}

func TestUndoAtStartIsNoop(t *testing.T) {
	m := New(Unlimited)
	m.Reset(state("a"))

	got, ok := m.Undo()
	if ok {
		t.Error("Undo() at index 0 returned true")
	}
	if m.Index() != 0 {
		t.Errorf("Index() = %d, want 0", m.Index())
	}
	if diff := cmp.Diff([]string{"a"}, ids(got)); diff != "" {
		t.Errorf("Undo() mismatch (-want +got):\n%s", diff)
	}
}

func TestRedoAtEndIsNoop(t *testing.T) {
	m := New(Unlimited)
	m.Reset(state())
	m.Push(state("a"))

	got, ok := m.Redo()
	if ok {
		t.Error("Redo() at last index returned true")
	}
	if m.Index() != 1 {
		t.Errorf("Index() = %d, want 1", m.Index())
	}
	if diff := cmp.Diff([]string{"a"}, ids(got)); diff != "" {
		t.Errorf("Redo() mismatch (-want +got):\n%s", diff)
	}
}

func TestUndoRedoInverse(t *testing.T) {
	m := New(Unlimited)
	m.Reset(state())
	m.Push(state("a"))
	m.Push(state("a", "b"))
	before := m.Current()

	if _, ok := m.Undo(); !ok {
		t.Fatal("Undo() = false")
	}
	after, ok := m.Redo()
	if !ok {
		t.Fatal("Redo() = false")
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("undo then redo changed state (-want +got):\n%s", diff)
	}
}

func TestPushTruncatesRedoBranch(t *testing.T) {
	m := New(Unlimited)
	m.Reset(state())
	m.Push(state("a"))
	m.Push(state("a", "b"))
	m.Undo()
	m.Undo()

	m.Push(state("c"))

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	if m.CanRedo() {
		t.Error("CanRedo() = true after push")
	}
	prev, _ := m.Undo()
	if len(prev.Nodes) != 0 {
		t.Errorf("Undo() = %v, want empty", ids(prev))
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		pushes   int
		wantLen  int
	}{
		{"bounded", 3, 5, 3},
		{"unlimited", 0, 150, 151},
		{"negative", -1, 150, 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.capacity)
			for i := 0; i < tt.pushes; i++ {
				m.Push(state())
			}
			if m.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", m.Len(), tt.wantLen)
			}
			if m.Index() != m.Len()-1 {
				t.Errorf("Index() = %d, want %d", m.Index(), m.Len()-1)
			}
		})
	}
}

func TestCapacityKeepsNewest(t *testing.T) {
	m := New(2)
	m.Reset(state("a"))
	m.Push(state("b"))
	m.Push(state("c"))

	got, ok := m.Undo()
	if !ok {
		t.Fatal("Undo() = false")
	}
	if diff := cmp.Diff([]string{"b"}, ids(got)); diff != "" {
		t.Errorf("Undo() mismatch (-want +got):\n%s", diff)
	}
	if m.CanUndo() {
		t.Error("oldest snapshot should have been dropped")
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	m := New(Unlimited)
	s := state("a")
	m.Reset(s)

	s.Nodes[0].Data.Label = "mutated"
	got := m.Current()
	if got.Nodes[0].Data.Label != "" {
		t.Error("Reset() kept a reference to the caller's slice")
	}

	got.Nodes[0].ID = "changed"
	if m.Current().Nodes[0].ID != "a" {
		t.Error("Current() returned a reference into history")
	}
}
