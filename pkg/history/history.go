// Package history implements the snapshot-based undo/redo stack of a diagram.
//
// A [Manager] stores deep copies of [graph.State] and a cursor into them.
// Every committed edit pushes one snapshot; undo and redo move the cursor and
// hand back a copy of the snapshot it lands on:
//
//	h := history.New(history.Unlimited)
//	h.Reset(doc.State())
//	h.Push(next)
//	prev, ok := h.Undo()
//
// The Manager is not safe for concurrent use; the editor session that owns it
// serializes access.
package history

import "github.com/matzehuels/archflow/pkg/graph"

// Unlimited keeps every snapshot, so any run of edits can be undone back to
// the loaded state.
const Unlimited = 0

// Manager is a linear undo/redo history.
type Manager struct {
	entries  []graph.State
	index    int
	capacity int
}

// New returns a Manager holding a single empty snapshot. A positive capacity
// drops the oldest snapshots beyond it; zero or less keeps everything.
func New(capacity int) *Manager {
	return &Manager{
		entries:  []graph.State{graph.State{}.Clone()},
		capacity: capacity,
	}
}

// Reset discards all history and seeds it with s at index 0.
func (m *Manager) Reset(s graph.State) {
	m.entries = []graph.State{s.Clone()}
	m.index = 0
}

// Push records s as the newest snapshot. Entries after the cursor are
// discarded first, so pushing after an undo forgets the redo branch.
func (m *Manager) Push(s graph.State) {
	m.entries = append(m.entries[:m.index+1], s.Clone())
	m.index = len(m.entries) - 1

	if m.capacity > 0 && len(m.entries) > m.capacity {
		drop := len(m.entries) - m.capacity
		m.entries = append([]graph.State(nil), m.entries[drop:]...)
		m.index -= drop
	}
}

// Undo moves the cursor back one snapshot and returns it. At index 0 it
// returns the current snapshot and false.
func (m *Manager) Undo() (graph.State, bool) {
	if !m.CanUndo() {
		return m.Current(), false
	}
	m.index--
	return m.Current(), true
}

// Redo moves the cursor forward one snapshot and returns it. At the newest
// snapshot it returns the current one and false.
func (m *Manager) Redo() (graph.State, bool) {
	if !m.CanRedo() {
		return m.Current(), false
	}
	m.index++
	return m.Current(), true
}

// CanUndo reports whether [Manager.Undo] would move.
func (m *Manager) CanUndo() bool { return m.index > 0 }

// CanRedo reports whether [Manager.Redo] would move.
func (m *Manager) CanRedo() bool { return m.index < len(m.entries)-1 }

// Len returns the number of stored snapshots.
func (m *Manager) Len() int { return len(m.entries) }

// Index returns the cursor position.
func (m *Manager) Index() int { return m.index }

// Current returns a copy of the snapshot under the cursor.
func (m *Manager) Current() graph.State { return m.entries[m.index].Clone() }
