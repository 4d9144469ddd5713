// Package store defines how diagrams and their metadata are persisted.
//
// A diagram is stored as two records: a workflow row with its name,
// description and last update time, and a graph row holding the nodes,
// edges and default edge options as JSON blobs. The [Gateway] interface is
// what the editor needs; [Workflows] is what the dashboard needs.
//
// Backends live in subpackages:
//   - memory: in-process maps, used by tests and as the demo backend
//   - file: one directory per workflow, the CLI default
//   - sqlite: an embedded database file mirrored to replica sinks
//   - postgres: a pgx pool with JSONB columns
//   - mongo: two collections keyed by workflow id
//
// Every backend passes the shared suite in package storetest.
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/observability"
)

// ErrNotFound is returned when a workflow does not exist. It carries the
// WORKFLOW_NOT_FOUND code.
var ErrNotFound = errors.New(errors.ErrCodeWorkflowNotFound, "workflow not found")

// Gateway loads and saves diagram documents.
type Gateway interface {
	// Load returns a deep copy of the stored document. A workflow without a
	// stored graph, or an unknown id, yields an empty document and no error.
	Load(ctx context.Context, id string) (*graph.Document, error)

	// Save replaces the stored document and refreshes the workflow's
	// updatedAt. It returns ErrNotFound when the workflow does not exist.
	Save(ctx context.Context, id string, doc *graph.Document) error
}

// Workflows manages diagram metadata.
type Workflows interface {
	// List returns the workflows whose name or description contains query,
	// ignoring case, newest first. An empty query matches everything.
	List(ctx context.Context, query string) ([]graph.Workflow, error)

	// Create adds a workflow with an empty graph.
	Create(ctx context.Context, name, description string) (graph.Workflow, error)

	// Get returns ErrNotFound when the workflow does not exist.
	Get(ctx context.Context, id string) (graph.Workflow, error)

	Rename(ctx context.Context, id, name, description string) (graph.Workflow, error)

	// Delete removes the workflow and its graph.
	Delete(ctx context.Context, id string) error
}

// Store is a complete persistence backend.
type Store interface {
	Gateway
	Workflows
	Close() error
}

// Clock returns the current time. Backends take one so tests can control
// updatedAt ordering.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

// TimeLayout is the fixed-width RFC 3339 layout used for updated_at columns.
// Fixed width keeps text ordering equal to time ordering.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime formats t for an updated_at column.
func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// ParseTime parses an updated_at column. Any RFC 3339 value is accepted.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeSerialization, err, "parse updated_at %q", s)
	}
	return t.UTC(), nil
}

// WorkflowID returns the identifier of a workflow created at t.
func WorkflowID(t time.Time) string {
	return "wf-" + strconv.FormatInt(t.UnixMilli(), 10)
}

// NextWorkflowID returns the first id at or after t that taken reports as
// free. Backends use it to avoid collisions between workflows created in the
// same millisecond. An error from taken stops the search and is returned.
func NextWorkflowID(t time.Time, taken func(id string) (bool, error)) (string, error) {
	for {
		id := WorkflowID(t)
		used, err := taken(id)
		if err != nil {
			return "", err
		}
		if !used {
			return id, nil
		}
		t = t.Add(time.Millisecond)
	}
}

// ValidateMeta checks a workflow name and description.
func ValidateMeta(name, description string) error {
	if err := errors.ValidateWorkflowName(name); err != nil {
		return err
	}
	return errors.ValidateWorkflowDescription(description)
}

// Matches reports whether wf matches a List query.
func Matches(wf graph.Workflow, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(wf.Name), q) ||
		strings.Contains(strings.ToLower(wf.Description), q)
}

// SortByUpdated orders workflows newest first, breaking ties by id.
func SortByUpdated(wfs []graph.Workflow) {
	sort.SliceStable(wfs, func(i, j int) bool {
		if !wfs[i].UpdatedAt.Equal(wfs[j].UpdatedAt) {
			return wfs[i].UpdatedAt.After(wfs[j].UpdatedAt)
		}
		return wfs[i].ID > wfs[j].ID
	})
}

// Columns is a document encoded the way the SQL backends store it.
type Columns struct {
	Nodes              []byte
	Edges              []byte
	DefaultEdgeOptions []byte
}

// EncodeColumns encodes doc into its stored columns. A nil document encodes
// as an empty graph.
func EncodeColumns(doc *graph.Document) (Columns, error) {
	if doc == nil {
		doc = graph.NewDocument()
	}
	var c Columns
	var err error
	if c.Nodes, err = graph.MarshalNodes(doc.Nodes); err != nil {
		return Columns{}, errors.Wrap(errors.ErrCodeSerialization, err, "encode nodes")
	}
	if c.Edges, err = graph.MarshalEdges(doc.Edges); err != nil {
		return Columns{}, errors.Wrap(errors.ErrCodeSerialization, err, "encode edges")
	}
	if c.DefaultEdgeOptions, err = graph.MarshalEdgeOptions(doc.DefaultEdgeOptions); err != nil {
		return Columns{}, errors.Wrap(errors.ErrCodeSerialization, err, "encode default edge options")
	}
	return c, nil
}

// Decode rebuilds the document.
func (c Columns) Decode() (*graph.Document, error) {
	doc, err := graph.UnmarshalColumns(c.Nodes, c.Edges, c.DefaultEdgeOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "decode graph")
	}
	return doc, nil
}

// EmptyColumns are the columns of a freshly created workflow.
func EmptyColumns() Columns {
	return Columns{Nodes: []byte("[]"), Edges: []byte("[]"), DefaultEdgeOptions: []byte("null")}
}

// Track reports one backend operation to the store hooks. Call it with a
// named error result:
//
//	func (s *Store) Save(ctx context.Context, id string, doc *graph.Document) (err error) {
//	    defer store.Track(ctx, "sqlite", "save")(&err)
func Track(ctx context.Context, backend, op string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		observability.Store().OnQuery(ctx, backend, op, time.Since(start), err)
	}
}
