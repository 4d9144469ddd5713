// Package postgres is a [store.Store] on PostgreSQL via pgx. Graph columns
// are JSONB; everything else matches the embedded schema.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/retry"
	"github.com/matzehuels/archflow/pkg/store"
)

const backend = "postgres"

// Store implements [store.Store] using a pgx connection pool.
type Store struct {
	db  *pgxpool.Pool
	now store.Clock
}

// New wraps an existing pool. A nil clock uses the system clock.
func New(db *pgxpool.Pool, clock store.Clock) *Store {
	if clock == nil {
		clock = store.SystemClock
	}
	return &Store{db: db, now: clock}
}

// Connect opens a pool for dsn and creates the schema.
func Connect(ctx context.Context, dsn string, clock store.Clock) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "postgres: connect")
	}
	if err := retry.Do(ctx, retry.Startup, func() error { return retry.Transient(pool.Ping(ctx)) }); err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "postgres: ping")
	}
	s := New(pool, clock)
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "postgres: create schema")
	}
	return s, nil
}

func wrap(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, "postgres: "+format, args...)
}

func (s *Store) Load(ctx context.Context, id string) (doc *graph.Document, err error) {
	defer store.Track(ctx, backend, "load")(&err)

	var cols store.Columns
	err = s.db.QueryRow(ctx,
		`SELECT nodes, edges, default_edge_options FROM graphs WHERE workflow_id = $1`, id,
	).Scan(&cols.Nodes, &cols.Edges, &cols.DefaultEdgeOptions)
	if err == pgx.ErrNoRows {
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

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE workflows SET updated_at = $1 WHERE id = $2`,
		store.FormatTime(s.now()), id)
	if err != nil {
		return wrap(err, "touch workflow %s", id)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO graphs (workflow_id, nodes, edges, default_edge_options)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workflow_id) DO UPDATE SET
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			default_edge_options = EXCLUDED.default_edge_options`,
		id, cols.Nodes, cols.Edges, cols.DefaultEdgeOptions,
	); err != nil {
		return wrap(err, "save graph %s", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrap(err, "commit")
	}
	return nil
}

func scanWorkflow(row pgx.Row) (graph.Workflow, error) {
	var (
		wf      graph.Workflow
		desc    *string
		updated *string
	)
	if err := row.Scan(&wf.ID, &wf.Name, &desc, &updated); err != nil {
		return graph.Workflow{}, err
	}
	if desc != nil {
		wf.Description = *desc
	}
	if updated != nil {
		t, err := store.ParseTime(*updated)
		if err != nil {
			return graph.Workflow{}, err
		}
		wf.UpdatedAt = t
	}
	return wf, nil
}

func (s *Store) List(ctx context.Context, query string) (out []graph.Workflow, err error) {
	defer store.Track(ctx, backend, "list")(&err)

	rows, err := s.db.Query(ctx,
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

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return graph.Workflow{}, wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	now := s.now()
	wf = graph.Workflow{Name: name, Description: description, UpdatedAt: now}
	// Retry on the next millisecond when another workflow took this id.
	for at := now; ; at = at.Add(time.Millisecond) {
		wf.ID = store.WorkflowID(at)
		tag, err := tx.Exec(ctx, `
			INSERT INTO workflows (id, name, description, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			wf.ID, wf.Name, wf.Description, store.FormatTime(now))
		if err != nil {
			return graph.Workflow{}, wrap(err, "insert workflow")
		}
		if tag.RowsAffected() == 1 {
			break
		}
	}

	empty := store.EmptyColumns()
	if _, err := tx.Exec(ctx,
		`INSERT INTO graphs (workflow_id, nodes, edges, default_edge_options) VALUES ($1, $2, $3, $4)`,
		wf.ID, empty.Nodes, empty.Edges, empty.DefaultEdgeOptions,
	); err != nil {
		return graph.Workflow{}, wrap(err, "insert graph")
	}
	if err := tx.Commit(ctx); err != nil {
		return graph.Workflow{}, wrap(err, "commit")
	}
	return wf, nil
}

func (s *Store) Get(ctx context.Context, id string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "get")(&err)

	wf, err = scanWorkflow(s.db.QueryRow(ctx,
		`SELECT id, name, description, updated_at FROM workflows WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
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

	wf, err = scanWorkflow(s.db.QueryRow(ctx, `
		UPDATE workflows SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
		RETURNING id, name, description, updated_at`,
		name, description, store.FormatTime(s.now()), id))
	if err == pgx.ErrNoRows {
		return graph.Workflow{}, store.ErrNotFound
	}
	if err != nil {
		return graph.Workflow{}, wrap(err, "rename workflow %s", id)
	}
	return wf, nil
}

func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer store.Track(ctx, backend, "delete")(&err)

	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return wrap(err, "delete workflow %s", id)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

var _ store.Store = (*Store)(nil)
