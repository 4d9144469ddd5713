// Package editor owns an open diagram: the document, its undo history, the
// dirty flag and the store it is saved to.
//
// A [Session] is the single writer of its document. Every operation goes
// through one mutex, maps to one pure function in package mutate, and commits
// at most one history entry:
//
//	s, err := editor.Open(ctx, st, "wf-1", editor.Options{})
//	id, _ := s.AddNode(ctx, "service", graph.Position{X: 100, Y: 100}, nil)
//	_ = s.Layout(ctx, layout.LR)
//	err = s.Save(ctx)
//
// Sessions opened with Options.ReadOnly are viewers: they may move nodes,
// drop them into groups and collapse groups, but those edits are never
// recorded in history, never mark the session dirty and cannot be saved.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/history"
	"github.com/matzehuels/archflow/pkg/layout"
	"github.com/matzehuels/archflow/pkg/mutate"
	"github.com/matzehuels/archflow/pkg/observability"
	"github.com/matzehuels/archflow/pkg/store"
)

var (
	// ErrNotLoaded is returned by every operation before [Session.Load]
	// has completed.
	ErrNotLoaded = errors.New(errors.ErrCodeNotLoaded, "workflow is not loaded yet")

	// ErrReadOnly is returned when a viewer session attempts an edit.
	ErrReadOnly = errors.New(errors.ErrCodeReadOnly, "session is read-only")
)

// Options configures a [Session].
type Options struct {
	// ReadOnly opens the session in viewer mode.
	ReadOnly bool

	// Layouter runs automatic layout. Nil uses a default [layout.Engine].
	Layouter layout.Layouter

	// HistoryCapacity bounds the undo history. Zero keeps every snapshot.
	HistoryCapacity int

	// IDs generates node and edge IDs. Nil uses [mutate.UUIDs].
	IDs mutate.IDSource

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Layouter == nil {
		o.Layouter = layout.New(layout.DefaultOptions())
	}
	if o.IDs == nil {
		o.IDs = mutate.UUIDs{}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Session is one open diagram. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	workflow graph.Workflow
	doc      *graph.Document
	history  *history.Manager
	gateway  store.Gateway
	opts     Options
	loaded   bool
	dirty    bool
	revision uint64

	saves saveQueue
}

// New returns an unloaded session for workflowID. Every operation returns
// [ErrNotLoaded] until [Session.Load] succeeds.
func New(gateway store.Gateway, workflowID string, opts Options) *Session {
	opts = opts.withDefaults()
	s := &Session{
		workflow: graph.Workflow{ID: workflowID},
		doc:      graph.NewDocument(),
		history:  history.New(opts.HistoryCapacity),
		gateway:  gateway,
		opts:     opts,
	}
	s.saves.init()
	return s
}

// Open creates a session and loads it.
func Open(ctx context.Context, gateway store.Gateway, workflowID string, opts Options) (*Session, error) {
	s := New(gateway, workflowID, opts)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the workflow metadata, when the gateway also implements
// [store.Workflows], and the stored graph. History is reset to a single
// snapshot and the session is clean. An unknown workflow loads as an empty
// document; saving it fails until the workflow is created.
func (s *Session) Load(ctx context.Context) error {
	id := s.ID()

	wf := graph.Workflow{ID: id}
	if ws, ok := s.gateway.(store.Workflows); ok {
		got, err := ws.Get(ctx, id)
		switch {
		case err == nil:
			wf = got
		case errors.Is(err, errors.ErrCodeWorkflowNotFound):
			s.opts.Logger.Debug("workflow not found, opening empty", "id", id)
		default:
			return err
		}
	}

	doc, err := s.gateway.Load(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflow = wf
	s.doc = doc
	s.history.Reset(doc.State())
	s.loaded = true
	s.dirty = false
	s.revision++

	s.opts.Logger.Debug("loaded workflow",
		"id", id, "nodes", len(doc.Nodes), "edges", len(doc.Edges), "readOnly", s.opts.ReadOnly)
	return nil
}

// ID returns the workflow ID.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.ID
}

// Workflow returns the workflow metadata read by Load.
func (s *Session) Workflow() graph.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow
}

// ReadOnly reports whether the session is a viewer.
func (s *Session) ReadOnly() bool { return s.opts.ReadOnly }

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	Workflow graph.Workflow  `json:"workflow"`
	Document *graph.Document `json:"document"`
	Loaded   bool            `json:"loaded"`
	Dirty    bool            `json:"dirty"`
	ReadOnly bool            `json:"readOnly"`
	CanUndo  bool            `json:"canUndo"`
	CanRedo  bool            `json:"canRedo"`
	Revision uint64          `json:"revision"`
}

// Snapshot returns a deep copy of the document and the session flags.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Workflow: s.workflow,
		Document: s.doc.Clone(),
		Loaded:   s.loaded,
		Dirty:    s.dirty,
		ReadOnly: s.opts.ReadOnly,
		CanUndo:  s.loaded && !s.opts.ReadOnly && s.history.CanUndo(),
		CanRedo:  s.loaded && !s.opts.ReadOnly && s.history.CanRedo(),
		Revision: s.revision,
	}
}

// Dirty reports whether the document has unsaved edits.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

type mutation func(graph.State) (graph.State, bool)

// gate checks the loaded and read-only flags. Callers hold mu.
func (s *Session) gate(viewerAllowed bool) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.opts.ReadOnly && !viewerAllowed {
		return ErrReadOnly
	}
	return nil
}

// commitLocked installs next as the current state. Editors push one history
// entry and become dirty; viewers only see the new state.
func (s *Session) commitLocked(ctx context.Context, op string, next graph.State) {
	s.doc.SetState(next)
	if s.opts.ReadOnly {
		return
	}
	s.history.Push(next)
	s.dirty = true
	s.revision++
	observability.Editor().OnMutation(ctx, op)
}

// apply runs fn against the current state and commits the result when it
// changed anything.
func (s *Session) apply(ctx context.Context, op string, viewerAllowed bool, fn mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(viewerAllowed); err != nil {
		return err
	}
	next, changed := fn(s.doc.State())
	if changed {
		s.commitLocked(ctx, op, next)
	}
	return nil
}

// AddNode drops a node of the given kind at pos and returns its ID.
func (s *Session) AddNode(ctx context.Context, kind string, pos graph.Position, init *graph.NodeData) (string, error) {
	var id string
	err := s.apply(ctx, "add_node", false, func(st graph.State) (graph.State, bool) {
		var next graph.State
		next, id = mutate.AddNode(st, kind, pos, init, s.opts.IDs)
		return next, true
	})
	return id, err
}

// Connect adds an edge styled by the document's default edge options. It
// returns an empty ID when an endpoint does not exist.
func (s *Session) Connect(ctx context.Context, source, target, sourceHandle, targetHandle string) (string, error) {
	var id string
	err := s.apply(ctx, "connect", false, func(st graph.State) (graph.State, bool) {
		var next graph.State
		var ok bool
		next, id, ok = mutate.Connect(st, source, target, sourceHandle, targetHandle, s.doc.EdgeDefaults(), s.opts.IDs)
		return next, ok
	})
	return id, err
}

// UpdateNodeData merges patch into the node's data.
func (s *Session) UpdateNodeData(ctx context.Context, id string, patch mutate.NodeDataPatch) error {
	return s.apply(ctx, "update_node_data", false, func(st graph.State) (graph.State, bool) {
		return mutate.UpdateNodeData(st, id, patch)
	})
}

// UpdateNodeStyle sets the resize dimensions of a node.
func (s *Session) UpdateNodeStyle(ctx context.Context, id string, width, height float64) error {
	return s.apply(ctx, "update_node_style", false, func(st graph.State) (graph.State, bool) {
		return mutate.UpdateNodeStyle(st, id, width, height)
	})
}

// UpdateEdge merges patch into an edge.
func (s *Session) UpdateEdge(ctx context.Context, id string, patch mutate.EdgePatch) error {
	return s.apply(ctx, "update_edge", false, func(st graph.State) (graph.State, bool) {
		return mutate.UpdateEdge(st, id, patch)
	})
}

// MoveNode commits the end of a drag. Viewers may move nodes.
func (s *Session) MoveNode(ctx context.Context, id string, pos graph.Position) error {
	return s.apply(ctx, "move_node", true, func(st graph.State) (graph.State, bool) {
		return mutate.MoveNode(st, id, pos)
	})
}

// DeleteNode removes a node and every edge touching it.
func (s *Session) DeleteNode(ctx context.Context, id string) error {
	return s.apply(ctx, "delete_node", false, func(st graph.State) (graph.State, bool) {
		return mutate.DeleteNode(st, id)
	})
}

// DeleteEdge removes an edge.
func (s *Session) DeleteEdge(ctx context.Context, id string) error {
	return s.apply(ctx, "delete_edge", false, func(st graph.State) (graph.State, bool) {
		return mutate.DeleteEdge(st, id)
	})
}

// DuplicateNode copies a node and returns the copy's ID, or an empty ID when
// the node does not exist.
func (s *Session) DuplicateNode(ctx context.Context, id string) (string, error) {
	var dup string
	err := s.apply(ctx, "duplicate_node", false, func(st graph.State) (graph.State, bool) {
		var next graph.State
		var ok bool
		next, dup, ok = mutate.DuplicateNode(st, id, s.opts.IDs)
		return next, ok
	})
	return dup, err
}

// Reparent moves a node into parentID, or out of its group when parentID is
// empty, keeping its canvas position.
func (s *Session) Reparent(ctx context.Context, id, parentID string) error {
	return s.apply(ctx, "reparent", false, func(st graph.State) (graph.State, bool) {
		return mutate.Reparent(st, id, parentID)
	})
}

// ReparentOnDrop attaches a dropped node to the group under it. Viewers may
// drop nodes.
func (s *Session) ReparentOnDrop(ctx context.Context, id string) error {
	return s.apply(ctx, "drop", true, func(st graph.State) (graph.State, bool) {
		return mutate.ReparentOnDrop(st, id)
	})
}

// ToggleGroupCollapse collapses or expands a group. Viewers may toggle
// groups.
func (s *Session) ToggleGroupCollapse(ctx context.Context, groupID string) error {
	return s.apply(ctx, "toggle_group", true, func(st graph.State) (graph.State, bool) {
		return mutate.ToggleGroupCollapse(st, groupID)
	})
}

// Layout arranges the top-level nodes in dir and commits the result as one
// edit.
func (s *Session) Layout(ctx context.Context, dir layout.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(false); err != nil {
		return err
	}
	res, err := s.opts.Layouter.Layout(ctx, s.doc.Nodes, s.doc.Edges, dir)
	if err != nil {
		return err
	}
	next := graph.State{Nodes: res.Nodes, Edges: res.Edges}
	if !placementChanged(s.doc.Nodes, next.Nodes) {
		return nil
	}
	s.commitLocked(ctx, "layout", next)
	s.opts.Logger.Debug("applied layout",
		"workflow", s.workflow.ID, "direction", dir, "crossings", res.Crossings)
	return nil
}

func placementChanged(before, after []graph.Node) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		a, b := &before[i], &after[i]
		if a.Position != b.Position || a.SourcePosition != b.SourcePosition || a.TargetPosition != b.TargetPosition {
			return true
		}
	}
	return false
}

// Undo restores the previous snapshot. It reports whether the history moved.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	return s.step(ctx, s.history.Undo, observability.Editor().OnUndo)
}

// Redo restores the next snapshot. It reports whether the history moved.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	return s.step(ctx, s.history.Redo, observability.Editor().OnRedo)
}

func (s *Session) step(ctx context.Context, move func() (graph.State, bool), hook func(context.Context)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(false); err != nil {
		return false, err
	}
	st, ok := move()
	if !ok {
		return false, nil
	}
	s.doc.SetState(st)
	s.dirty = true
	s.revision++
	hook(ctx)
	return true, nil
}

// EdgeDefaults returns the options new edges are created with.
func (s *Session) EdgeDefaults() graph.DefaultEdgeOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.EdgeDefaults()
}

// SetDefaultEdgeOptions replaces the options for new edges. Existing edges
// are untouched and no history entry is recorded.
func (s *Session) SetDefaultEdgeOptions(ctx context.Context, opts graph.DefaultEdgeOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(false); err != nil {
		return err
	}
	o := opts.Clone()
	s.doc.DefaultEdgeOptions = &o
	s.dirty = true
	s.revision++
	return nil
}

// ApplyDefaultEdgeStyleToAll restyles every existing edge with the current
// default edge options.
func (s *Session) ApplyDefaultEdgeStyleToAll(ctx context.Context) error {
	return s.apply(ctx, "apply_edge_defaults", false, func(st graph.State) (graph.State, bool) {
		return mutate.ApplyDefaultEdgeStyleToAll(st, s.doc.EdgeDefaults())
	})
}

// Save writes the document to the gateway. Concurrent saves run one at a
// time in call order, each writing the document as it was when Save was
// called. The session becomes clean only if nothing changed since then. On
// failure the session stays dirty and the error is returned. A save still
// queued when ctx ends returns ctx.Err() without writing.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if err := s.gate(false); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.workflow.ID
	doc := s.doc.Clone()
	rev := s.revision
	ticket := s.saves.take()
	s.mu.Unlock()

	if err := s.saves.wait(ctx, ticket); err != nil {
		s.opts.Logger.Warn("save abandoned while queued", "workflow", id, "error", err)
		return err
	}
	defer s.saves.done()

	start := time.Now()
	err := s.gateway.Save(ctx, id, doc)
	observability.Editor().OnSave(ctx, len(doc.Nodes), len(doc.Edges), time.Since(start), err)
	if err != nil {
		s.opts.Logger.Warn("save failed", "workflow", id, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision == rev {
		s.dirty = false
	}
	s.opts.Logger.Debug("saved workflow", "id", id, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return nil
}

// saveQueue hands out tickets so that saves run in the order they were
// requested. A waiter whose context ends gives up its ticket.
type saveQueue struct {
	mu        sync.Mutex
	next      uint64
	serving   uint64
	abandoned map[uint64]bool
	// turn is closed and replaced each time serving advances.
	turn chan struct{}
}

func (q *saveQueue) init() {
	q.abandoned = make(map[uint64]bool)
	q.turn = make(chan struct{})
}

func (q *saveQueue) take() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := q.next
	q.next++
	return t
}

// wait blocks until ticket is being served or ctx ends. On ctx.Err the
// ticket is released and done must not be called.
func (q *saveQueue) wait(ctx context.Context, ticket uint64) error {
	for {
		q.mu.Lock()
		if q.serving == ticket {
			q.mu.Unlock()
			return nil
		}
		turn := q.turn
		q.mu.Unlock()

		select {
		case <-turn:
		case <-ctx.Done():
			q.mu.Lock()
			if q.serving == ticket {
				q.advance()
			} else {
				q.abandoned[ticket] = true
			}
			q.mu.Unlock()
			return ctx.Err()
		}
	}
}

func (q *saveQueue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.advance()
}

// advance moves to the next live ticket. q.mu must be held.
func (q *saveQueue) advance() {
	q.serving++
	for q.abandoned[q.serving] {
		delete(q.abandoned, q.serving)
		q.serving++
	}
	close(q.turn)
	q.turn = make(chan struct{})
}
