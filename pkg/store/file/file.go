// Package file is a [store.Store] that keeps each workflow in its own
// directory:
//
//	<dir>/<id>/workflow.json
//	<dir>/<id>/graph.json
//
// It is the CLI default. The directory defaults to
// ~/.config/archflow/workflows.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
)

const (
	backend      = "file"
	workflowFile = "workflow.json"
	graphFile    = "graph.json"
)

// Store is a directory-backed store.
type Store struct {
	mu      sync.RWMutex
	baseDir string
	now     store.Clock
}

// New opens a store in baseDir, creating it if needed. An empty baseDir
// uses the default location.
func New(baseDir string, clock store.Clock) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "archflow", "workflows")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create workflow dir: %w", err)
	}
	if clock == nil {
		clock = store.SystemClock
	}
	return &Store{baseDir: baseDir, now: clock}, nil
}

// Path returns the base directory.
func (s *Store) Path() string { return s.baseDir }

func (s *Store) dir(id string) string { return filepath.Join(s.baseDir, id) }

func (s *Store) readMeta(id string) (graph.Workflow, error) {
	if errors.ValidateWorkflowID(id) != nil {
		return graph.Workflow{}, store.ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir(id), workflowFile))
	if os.IsNotExist(err) {
		return graph.Workflow{}, store.ErrNotFound
	}
	if err != nil {
		return graph.Workflow{}, errors.Wrap(errors.ErrCodeStorage, err, "read workflow %s", id)
	}
	var wf graph.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return graph.Workflow{}, errors.Wrap(errors.ErrCodeSerialization, err, "parse workflow %s", id)
	}
	return wf, nil
}

func (s *Store) writeJSON(id, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "encode %s", name)
	}
	if err := os.MkdirAll(s.dir(id), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create workflow dir %s", id)
	}
	// Write to a temp file and rename so readers never see a partial file.
	tmp := filepath.Join(s.dir(id), name+".tmp")
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", name)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir(id), name)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", name)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (doc *graph.Document, err error) {
	defer store.Track(ctx, backend, "load")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if errors.ValidateWorkflowID(id) != nil {
		return graph.NewDocument(), nil
	}
	f, err := os.Open(filepath.Join(s.dir(id), graphFile))
	if os.IsNotExist(err) {
		return graph.NewDocument(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open graph %s", id)
	}
	defer f.Close()

	doc, err = graph.ReadDocument(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "parse graph %s", id)
	}
	return doc, nil
}

func (s *Store) Save(ctx context.Context, id string, doc *graph.Document) (err error) {
	defer store.Track(ctx, backend, "save")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, err := s.readMeta(id)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = graph.NewDocument()
	}
	if err := s.writeJSON(id, graphFile, doc); err != nil {
		return err
	}
	wf.UpdatedAt = s.now()
	return s.writeJSON(id, workflowFile, wf)
}

func (s *Store) List(ctx context.Context, query string) (out []graph.Workflow, err error) {
	defer store.Track(ctx, backend, "list")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read workflow dir")
	}
	out = []graph.Workflow{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		wf, err := s.readMeta(entry.Name())
		if err != nil {
			continue
		}
		if store.Matches(wf, query) {
			out = append(out, wf)
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
	id, err := store.NextWorkflowID(now, func(id string) (bool, error) {
		_, err := os.Stat(s.dir(id))
		if os.IsNotExist(err) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return graph.Workflow{}, errors.Wrap(errors.ErrCodeStorage, err, "check workflow id")
	}
	wf = graph.Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		UpdatedAt:   now,
	}
	if err := s.writeJSON(wf.ID, graphFile, graph.NewDocument()); err != nil {
		return graph.Workflow{}, err
	}
	if err := s.writeJSON(wf.ID, workflowFile, wf); err != nil {
		return graph.Workflow{}, err
	}
	return wf, nil
}

func (s *Store) Get(ctx context.Context, id string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "get")(&err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMeta(id)
}

func (s *Store) Rename(ctx context.Context, id, name, description string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "rename")(&err)
	if err := store.ValidateMeta(name, description); err != nil {
		return graph.Workflow{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wf, err = s.readMeta(id)
	if err != nil {
		return graph.Workflow{}, err
	}
	wf.Name = name
	wf.Description = description
	wf.UpdatedAt = s.now()
	if err := s.writeJSON(id, workflowFile, wf); err != nil {
		return graph.Workflow{}, err
	}
	return wf, nil
}

func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer store.Track(ctx, backend, "delete")(&err)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readMeta(id); err != nil {
		return err
	}
	if err := os.RemoveAll(s.dir(id)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove workflow %s", id)
	}
	return nil
}

// Close does nothing.
func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
