// Package mongo is a [store.Store] on MongoDB. Workflows and graphs live in
// two collections keyed by workflow id; the graph columns are stored as JSON
// strings so every backend round-trips the same bytes.
package mongo

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/retry"
	"github.com/matzehuels/archflow/pkg/store"
)

const (
	backend = "mongo"

	// DefaultDatabase is used when Options.Database is empty.
	DefaultDatabase = "archflow"

	collWorkflows = "workflows"
	collGraphs    = "graphs"
)

// Options configures [Connect].
type Options struct {
	URI      string
	Database string
	Clock    store.Clock
	Logger   *log.Logger
}

type workflowDoc struct {
	ID          string `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	UpdatedAt   string `bson:"updatedAt"`
}

type graphDoc struct {
	WorkflowID         string `bson:"_id"`
	Nodes              string `bson:"nodes"`
	Edges              string `bson:"edges"`
	DefaultEdgeOptions string `bson:"defaultEdgeOptions"`
}

// Store implements [store.Store] on a MongoDB database.
type Store struct {
	client    *mongo.Client
	workflows *mongo.Collection
	graphs    *mongo.Collection
	now       store.Clock
	logger    *log.Logger
}

// Connect dials MongoDB and ensures the updatedAt index exists.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo: uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Clock == nil {
		opts.Clock = store.SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "mongo: connect")
	}
	ping := func() error { return retry.Transient(client.Ping(connectCtx, nil)) }
	if err := retry.Do(connectCtx, retry.Startup, ping); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "mongo: ping")
	}

	db := client.Database(opts.Database)
	s := &Store{
		client:    client,
		workflows: db.Collection(collWorkflows),
		graphs:    db.Collection(collGraphs),
		now:       opts.Clock,
		logger:    opts.Logger,
	}
	if _, err := s.workflows.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updatedAt", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "mongo: create index")
	}
	return s, nil
}

// Drop removes both collections.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.graphs.Drop(ctx); err != nil {
		return err
	}
	return s.workflows.Drop(ctx)
}

func wrap(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, "mongo: "+format, args...)
}

func (w workflowDoc) toWorkflow() (graph.Workflow, error) {
	t, err := store.ParseTime(w.UpdatedAt)
	if err != nil {
		return graph.Workflow{}, err
	}
	return graph.Workflow{ID: w.ID, Name: w.Name, Description: w.Description, UpdatedAt: t}, nil
}

func (s *Store) Load(ctx context.Context, id string) (doc *graph.Document, err error) {
	defer store.Track(ctx, backend, "load")(&err)

	var g graphDoc
	err = s.graphs.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return graph.NewDocument(), nil
	}
	if err != nil {
		return nil, wrap(err, "load graph %s", id)
	}
	cols := store.Columns{
		Nodes:              []byte(g.Nodes),
		Edges:              []byte(g.Edges),
		DefaultEdgeOptions: []byte(g.DefaultEdgeOptions),
	}
	return cols.Decode()
}

func (s *Store) Save(ctx context.Context, id string, doc *graph.Document) (err error) {
	defer store.Track(ctx, backend, "save")(&err)
	cols, err := store.EncodeColumns(doc)
	if err != nil {
		return err
	}

	res, err := s.workflows.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updatedAt": store.FormatTime(s.now())}})
	if err != nil {
		return wrap(err, "touch workflow %s", id)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}

	g := graphDoc{
		WorkflowID:         id,
		Nodes:              string(cols.Nodes),
		Edges:              string(cols.Edges),
		DefaultEdgeOptions: string(cols.DefaultEdgeOptions),
	}
	if _, err := s.graphs.ReplaceOne(ctx, bson.M{"_id": id}, g, options.Replace().SetUpsert(true)); err != nil {
		return wrap(err, "save graph %s", id)
	}
	return nil
}

func (s *Store) List(ctx context.Context, query string) (out []graph.Workflow, err error) {
	defer store.Track(ctx, backend, "list")(&err)

	cur, err := s.workflows.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, wrap(err, "list workflows")
	}
	defer cur.Close(ctx)

	out = []graph.Workflow{}
	for cur.Next(ctx) {
		var w workflowDoc
		if err := cur.Decode(&w); err != nil {
			return nil, wrap(err, "decode workflow")
		}
		wf, err := w.toWorkflow()
		if err != nil {
			return nil, err
		}
		if store.Matches(wf, query) {
			out = append(out, wf)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, wrap(err, "list workflows")
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, name, description string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "create")(&err)
	if err := store.ValidateMeta(name, description); err != nil {
		return graph.Workflow{}, err
	}

	now := s.now()
	w := workflowDoc{Name: name, Description: description, UpdatedAt: store.FormatTime(now)}
	for at := now; ; at = at.Add(time.Millisecond) {
		w.ID = store.WorkflowID(at)
		_, err := s.workflows.InsertOne(ctx, w)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return graph.Workflow{}, wrap(err, "insert workflow")
		}
		break
	}

	empty := store.EmptyColumns()
	g := graphDoc{
		WorkflowID:         w.ID,
		Nodes:              string(empty.Nodes),
		Edges:              string(empty.Edges),
		DefaultEdgeOptions: string(empty.DefaultEdgeOptions),
	}
	if _, err := s.graphs.InsertOne(ctx, g); err != nil {
		// Load treats a missing graph as empty.
		s.logger.Warn("mongo: insert empty graph failed", "workflow", w.ID, "err", err)
	}
	return w.toWorkflow()
}

func (s *Store) Get(ctx context.Context, id string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "get")(&err)

	var w workflowDoc
	err = s.workflows.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return graph.Workflow{}, store.ErrNotFound
	}
	if err != nil {
		return graph.Workflow{}, wrap(err, "get workflow %s", id)
	}
	return w.toWorkflow()
}

func (s *Store) Rename(ctx context.Context, id, name, description string) (wf graph.Workflow, err error) {
	defer store.Track(ctx, backend, "rename")(&err)
	if err := store.ValidateMeta(name, description); err != nil {
		return graph.Workflow{}, err
	}

	var w workflowDoc
	err = s.workflows.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":        name,
			"description": description,
			"updatedAt":   store.FormatTime(s.now()),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return graph.Workflow{}, store.ErrNotFound
	}
	if err != nil {
		return graph.Workflow{}, wrap(err, "rename workflow %s", id)
	}
	return w.toWorkflow()
}

func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer store.Track(ctx, backend, "delete")(&err)

	res, err := s.workflows.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap(err, "delete workflow %s", id)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	if _, err := s.graphs.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return wrap(err, "delete graph %s", id)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
