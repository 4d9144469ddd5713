// Package replica mirrors the embedded database file to secondary storage.
//
// After every write the sqlite backend exports its database file and hands
// the bytes to each configured [Sink] under [DBKey]. On startup, when the
// local file is missing, the first sink holding a copy restores it. Two sinks
// are provided: a local BadgerDB and S3-compatible object storage via MinIO.
package replica

import (
	"context"

	"github.com/charmbracelet/log"
)

// DBKey is the key the database file is stored under.
const DBKey = "sqlite_db_file"

// Sink stores opaque blobs by key.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	Put(ctx context.Context, key string, data []byte) error

	// Get reports a missing key with ok=false and a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	Close() error
}

// Mirror fans a blob out to several sinks.
type Mirror struct {
	sinks  []Sink
	logger *log.Logger
}

// NewMirror returns a Mirror over sinks. A nil logger uses log.Default().
func NewMirror(logger *log.Logger, sinks ...Sink) *Mirror {
	if logger == nil {
		logger = log.Default()
	}
	return &Mirror{sinks: sinks, logger: logger}
}

// Len returns the number of sinks.
func (m *Mirror) Len() int { return len(m.sinks) }

// Put writes data to every sink. A failing sink is logged and does not stop
// the others; the first error is returned.
func (m *Mirror) Put(ctx context.Context, key string, data []byte) error {
	var first error
	for _, s := range m.sinks {
		if err := s.Put(ctx, key, data); err != nil {
			m.logger.Warn("replica write failed", "sink", s.Name(), "key", key, "error", err)
			if first == nil {
				first = err
			}
			continue
		}
		m.logger.Debug("replica written", "sink", s.Name(), "key", key, "bytes", len(data))
	}
	return first
}

// Get returns the blob from the first sink that has it. Sink errors are
// logged and skipped.
func (m *Mirror) Get(ctx context.Context, key string) ([]byte, bool) {
	for _, s := range m.sinks {
		data, ok, err := s.Get(ctx, key)
		if err != nil {
			m.logger.Warn("replica read failed", "sink", s.Name(), "key", key, "error", err)
			continue
		}
		if ok {
			m.logger.Info("restoring from replica", "sink", s.Name(), "bytes", len(data))
			return data, true
		}
	}
	return nil, false
}

// Close closes every sink.
func (m *Mirror) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
