package sqlite

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
    nodes                JSON,
    edges                JSON,
    default_edge_options JSON
);

CREATE INDEX IF NOT EXISTS idx_workflows_updated_at ON workflows(updated_at);
`

// CreateSchema creates the workflows and graphs tables if they don't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropSchema drops both tables.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS graphs; DROP TABLE IF EXISTS workflows;`)
	return err
}
