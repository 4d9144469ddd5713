// Package sqlite is a [store.Store] on an embedded SQLite database file.
//
// The database runs in-process through modernc.org/sqlite, so no cgo or
// server is needed. After every committed write the whole file is exported
// and written to the configured replica sinks; on open, a missing file is
// restored from the first sink that holds a copy.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
	"github.com/matzehuels/archflow/pkg/store/replica"
)

const backend = "sqlite"

// Options configures a Store.
type Options struct {
	// Path is the database file. It is created when missing.
	Path string

	// Mirror receives a copy of the database file after every write. Nil
	// disables replication.
	Mirror *replica.Mirror

	Clock  store.Clock
	Logger *log.Logger
}

// Store is a SQLite-backed store.
type Store struct {
	db     *sql.DB
	path   string
	mirror *replica.Mirror
	now    store.Clock
	logger *log.Logger
}

// Open opens the database at opts.Path, restoring it from a replica first
// when the file does not exist, and creates the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sqlite: database path is required")
	}
	if opts.Clock == nil {
		opts.Clock = store.SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Store{path: opts.Path, mirror: opts.Mirror, now: opts.Clock, logger: opts.Logger}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0750); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "sqlite: create directory")
	}
	if err := s.restore(ctx); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", opts.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "sqlite: open %s", opts.Path)
	}
	// A single connection serializes writers and keeps the pragmas in force.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "sqlite: create schema")
	}
	return s, nil
}

// restore writes the replica copy to disk when the database file is missing.
func (s *Store) restore(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	data, ok := s.mirror.Get(ctx, replica.DBKey)
	if !ok {
		return nil
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "sqlite: restore %s", s.path)
	}
	return nil
}

// export copies a consistent snapshot of the database to the mirror.
func (s *Store) export(ctx context.Context) {
	if s.mirror == nil || s.mirror.Len() == 0 {
		return
	}
	tmp := s.path + ".export"
	_ = os.Remove(tmp)
	defer os.Remove(tmp)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		s.logger.Warn("sqlite export failed", "error", err)
		return
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		s.logger.Warn("sqlite export failed", "error", err)
		return
	}
	_ = s.mirror.Put(ctx, replica.DBKey, data)
}

// Export returns a consistent copy of the database file.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	tmp := s.path + ".export"
	_ = os.Remove(tmp)
	defer os.Remove(tmp)
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "sqlite: export")
	}
	return os.ReadFile(tmp)
}

func wrap(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, "sqlite: "+format, args...)
}

func (s *Store) Load(ctx context.Context, id string) (doc *graph.Document, err error) {
	defer store.Track(ctx, backend, "load")(&err)

	var cols store.Columns
	err = s.db.QueryRowContext(ctx,
		`SELECT nodes, edges, default_edge_options FROM graphs WHERE workflow_id = ?`, id,
	).Scan(&cols.Nodes, &cols.Edges, &cols.DefaultEdgeOptions)
	if err == sql.ErrNoRows {
		return graph.NewDocument(), nil
	}
	if err != nil {
		return nil, wrap(err, "load graph %s", id)
	}
	return cols.Decode()
}

func (s *Store) Save(ctx context.Context, id string, doc *graph.Document) (err error) {
	defer store.Track(ctx, backend, "save")(&err)
	cols, err := store.EncodeColumns(doc)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, "begin tx")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE workflows SET updated_at = ? WHERE id = ?`,
		store.FormatTime(s.now()), id)
	if err != nil {
		return wrap(err, "touch workflow %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO graphs (workflow_id, nodes, edges, default_edge_options)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(workflow_id) DO UPDATE SET
			nodes = excluded.nodes,
			edges = excluded.edges,
			default_edge_options = excluded.default_edge_options`,
		id, string(cols.Nodes), string(cols.Edges), string(cols.DefaultEdgeOptions),
	); err != nil {
		return wrap(err, "save graph %s", id)
	}

	if err := tx.Commit(); err != nil {
		return wrap(err, "commit")
	}
	s.export(ctx)
	return nil
}

func scanWorkflow(row interface{ Scan(...any) error }) (graph.Workflow, error) {
	var (
		wf      graph.Workflow
		desc    sql.NullString
		updated sql.NullString
	)
	if err := row.Scan(&wf.ID, &wf.Name, &desc, &updated); err != nil {
		return graph.Workflow{}, err
	}
	wf.Description = desc.String
	t, err := store.ParseTime(updated.String)
	if err != nil {
		return graph.Workflow{}, err
	}
	wf.UpdatedAt = t
	return wf, nil
}

func (s *Store) List(ctx context.Context, query string) (out []graph.Workflow, err error) {
	defer store.Track(ctx, backend, "list")(&err)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, updated_at FROM workflows ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, wrap(err, "list workflows")
	}
	defer rows.Close()

	out = []graph.Workflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, wrap(err, "scan workflow")
		}
		if store.Matches(wf, query) {
			out = append(out, wf)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "list workflows")
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, name, description string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "create")(&err)
	if err := store.ValidateMeta(name, description); err != nil {
		return graph.Workflow{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return graph.Workflow{}, wrap(err, "begin tx")
	}
	defer tx.Rollback()

	now := s.now()
	id, err := store.NextWorkflowID(now, func(id string) (bool, error) {
		var n int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflows WHERE id = ?`, id).Scan(&n)
		return n > 0, err
	})
	if err != nil {
		return graph.Workflow{}, wrap(err, "check workflow id")
	}
	wf = graph.Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		UpdatedAt:   now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workflows (id, name, description, updated_at) VALUES (?, ?, ?, ?)`,
		wf.ID, wf.Name, wf.Description, store.FormatTime(now),
	); err != nil {
		return graph.Workflow{}, wrap(err, "insert workflow")
	}
	empty := store.EmptyColumns()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO graphs (workflow_id, nodes, edges, default_edge_options) VALUES (?, ?, ?, ?)`,
		wf.ID, string(empty.Nodes), string(empty.Edges), string(empty.DefaultEdgeOptions),
	); err != nil {
		return graph.Workflow{}, wrap(err, "insert graph")
	}
	if err := tx.Commit(); err != nil {
		return graph.Workflow{}, wrap(err, "commit")
	}
	s.export(ctx)
	return wf, nil
}

func (s *Store) Get(ctx context.Context, id string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "get")(&err)

	wf, err = scanWorkflow(s.db.QueryRowContext(ctx,
		`SELECT id, name, description, updated_at FROM workflows WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return graph.Workflow{}, store.ErrNotFound
	}
	if err != nil {
		return graph.Workflow{}, wrap(err, "get workflow %s", id)
	}
	return wf, nil
}

func (s *Store) Rename(ctx context.Context, id, name, description string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "rename")(&err)
	if err := store.ValidateMeta(name, description); err != nil {
		return graph.Workflow{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE workflows SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, description, store.FormatTime(s.now()), id)
	if err != nil {
		return graph.Workflow{}, wrap(err, "rename workflow %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return graph.Workflow{}, store.ErrNotFound
	}
	s.export(ctx)
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer store.Track(ctx, backend, "delete")(&err)

	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return wrap(err, "delete workflow %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	s.export(ctx)
	return nil
}

// Close closes the database. Replica sinks are owned by the caller.
func (s *Store) Close() error { return s.db.Close() }

var _ store.Store = (*Store)(nil)
