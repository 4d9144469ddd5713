package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflows (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    updated_at  TEXT
);

CREATE TABLE IF NOT EXISTS graphs (
    workflow_id          TEXT PRIMARY KEY REFERENCES workflows(id) ON DELETE CASCADE,
    nodes                JSONB NOT NULL DEFAULT '[]',
    edges                JSONB NOT NULL DEFAULT '[]',
    default_edge_options JSONB
);

CREATE INDEX IF NOT EXISTS idx_workflows_updated_at ON workflows(updated_at DESC);
`

// CreateSchema creates the workflows and graphs tables if they don't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the graphs and workflows tables.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS graphs, workflows CASCADE;`)
	return err
}
