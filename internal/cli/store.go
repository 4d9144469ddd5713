package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/archflow/internal/config"
	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
	"github.com/matzehuels/archflow/pkg/store/file"
	"github.com/matzehuels/archflow/pkg/store/memory"
	"github.com/matzehuels/archflow/pkg/store/mongo"
	"github.com/matzehuels/archflow/pkg/store/postgres"
	"github.com/matzehuels/archflow/pkg/store/replica"
	"github.com/matzehuels/archflow/pkg/store/sqlite"
)

// openStore opens the configured backend. One-shot commands pass
// persistent=true: a memory store would forget everything on exit, so they
// fall back to the file store.
func (c *CLI) openStore(ctx context.Context, persistent bool) (store.Store, error) {
	cfg := c.config()
	backend := cfg.Store.Backend
	if persistent && backend == "memory" {
		backend = "file"
	}
	c.Logger.Debug("opening store", "backend", backend)

	switch backend {
	case "memory":
		st := memory.New()
		if cfg.Server.Seed {
			if err := st.Seed(memory.Samples(store.SystemClock())); err != nil {
				return nil, err
			}
		}
		return st, nil
	case "file":
		return file.New(cfg.Store.FileDir, nil)
	case "sqlite":
		mirror, err := c.openMirror(ctx, cfg.Replica)
		if err != nil {
			return nil, err
		}
		st, err := sqlite.Open(ctx, sqlite.Options{Path: cfg.Store.SQLitePath, Mirror: mirror, Logger: c.Logger})
		if err != nil {
			if mirror != nil {
				_ = mirror.Close()
			}
			return nil, err
		}
		return &mirroredStore{Store: st, mirror: mirror}, nil
	case "postgres":
		return postgres.Connect(ctx, cfg.Store.PostgresURL, nil)
	case "mongo":
		return mongo.Connect(ctx, mongo.Options{URI: cfg.Store.MongoURI, Database: cfg.Store.MongoDatabase, Logger: c.Logger})
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", backend)
}

// openMirror builds the replica sinks for the sqlite file. It returns nil
// when none is configured.
func (c *CLI) openMirror(ctx context.Context, cfg config.Replica) (*replica.Mirror, error) {
	var sinks []replica.Sink
	if cfg.BadgerPath != "" {
		s, err := replica.OpenBadger(replica.BadgerConfig{Path: cfg.BadgerPath, SyncWrites: true, Logger: c.Logger})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.MinioEndpoint != "" {
		s, err := replica.NewMinio(ctx, replica.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Prefix:    cfg.MinioPrefix,
		})
		if err != nil {
			for _, open := range sinks {
				_ = open.Close()
			}
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	c.Logger.Debug("replicating sqlite file", "sinks", len(sinks))
	return replica.NewMirror(c.Logger, sinks...), nil
}

// mirroredStore closes the replica sinks together with the sqlite store.
type mirroredStore struct {
	*sqlite.Store
	mirror *replica.Mirror
}

func (s *mirroredStore) Close() error {
	err := s.Store.Close()
	if s.mirror != nil {
		if merr := s.mirror.Close(); err == nil {
			err = merr
		}
	}
	return err
}

// input is a diagram read from a workflow or a JSON file.
type input struct {
	Doc *graph.Document
	// Workflow is set when the diagram came from the store.
	Workflow *graph.Workflow
	// Path is set when it came from a file.
	Path string
}

// Name returns a short display name.
func (in input) Name() string {
	if in.Workflow != nil {
		return in.Workflow.Name
	}
	return filepath.Base(in.Path)
}

// isFileArg reports whether arg names a document file rather than a
// workflow ID.
func isFileArg(arg string) bool {
	if strings.HasSuffix(strings.ToLower(arg), ".json") {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// readInput loads arg, a workflow ID or a path to a document JSON file.
// The store is only opened for workflow IDs.
func (c *CLI) readInput(ctx context.Context, arg string) (input, store.Store, error) {
	if isFileArg(arg) {
		doc, err := graph.ReadDocumentFile(arg)
		if err != nil {
			return input{}, nil, fmt.Errorf("read %s: %w", arg, err)
		}
		return input{Doc: doc, Path: arg}, nil, nil
	}

	st, err := c.openStore(ctx, true)
	if err != nil {
		return input{}, nil, err
	}
	wf, err := st.Get(ctx, arg)
	if err != nil {
		st.Close()
		return input{}, nil, err
	}
	doc, err := st.Load(ctx, arg)
	if err != nil {
		st.Close()
		return input{}, nil, err
	}
	return input{Doc: doc, Workflow: &wf}, st, nil
}
