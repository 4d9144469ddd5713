// Package memory is an in-process [store.Store].
//
// Graphs are kept as encoded JSON so a loaded document never aliases the
// stored one. It is the backend for tests and for the demo server, which
// starts from [Samples].
package memory

import (
	"context"
	"sync"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
)

const backend = "memory"

type record struct {
	meta  graph.Workflow
	graph store.Columns
}

// Store holds workflows in maps guarded by a mutex.
type Store struct {
	mu    sync.RWMutex
	now   store.Clock
	items map[string]*record
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for updatedAt.
func WithClock(c store.Clock) Option {
	return func(s *Store) { s.now = c }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: store.SystemClock, items: map[string]*record{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserts sample workflows with their documents, replacing entries
// with the same id.
func (s *Store) Seed(samples []Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, smp := range samples {
		cols, err := store.EncodeColumns(smp.Document)
		if err != nil {
			return err
		}
		s.items[smp.Workflow.ID] = &record{meta: smp.Workflow, graph: cols}
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (doc *graph.Document, err error) {
	defer store.Track(ctx, backend, "load")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return graph.NewDocument(), nil
	}
	return r.graph.Decode()
}

func (s *Store) Save(ctx context.Context, id string, doc *graph.Document) (err error) {
	defer store.Track(ctx, backend, "save")(&err)
	cols, err := store.EncodeColumns(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	r.graph = cols
	r.meta.UpdatedAt = s.now()
	return nil
}

func (s *Store) List(ctx context.Context, query string) (out []graph.Workflow, err error) {
	defer store.Track(ctx, backend, "list")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out = []graph.Workflow{}
	for _, r := range s.items {
		if store.Matches(r.meta, query) {
			out = append(out, r.meta)
		}
	}
	store.SortByUpdated(out)
	return out, nil
}

func (s *Store) Create(ctx context.Context, name, description string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "create")(&err)
	if err := store.ValidateMeta(name, description); err != nil {
		return graph.Workflow{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	id, _ := store.NextWorkflowID(now, func(id string) (bool, error) {
		_, taken := s.items[id]
		return taken, nil
	})
	wf = graph.Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		UpdatedAt:   now,
	}
	s.items[wf.ID] = &record{meta: wf, graph: store.EmptyColumns()}
	return wf, nil
}

func (s *Store) Get(ctx context.Context, id string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "get")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return graph.Workflow{}, store.ErrNotFound
	}
	return r.meta, nil
}

func (s *Store) Rename(ctx context.Context, id, name, description string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "rename")(&err)
	if err := store.ValidateMeta(name, description); err != nil {
		return graph.Workflow{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return graph.Workflow{}, store.ErrNotFound
	}
	r.meta.Name = name
	r.meta.Description = description
	r.meta.UpdatedAt = s.now()
	return r.meta, nil
}

func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer store.Track(ctx, backend, "delete")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Close does nothing.
func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
