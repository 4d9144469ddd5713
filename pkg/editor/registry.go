package editor

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/store"
)

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New(errors.ErrCodeNotFound, "editor session not found")

// DefaultIdleTTL is how long an untouched session stays registered.
const DefaultIdleTTL = 2 * time.Hour

// GenerateID returns a random URL-safe session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry holds the open sessions of a server, keyed by session ID. Several
// sessions may edit the same workflow; the last save wins.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	gateway  store.Gateway
	opts     Options
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry returns an empty registry opening sessions on gateway with
// opts. ReadOnly in opts is ignored; each Open chooses. A zero ttl uses
// [DefaultIdleTTL].
func NewRegistry(gateway store.Gateway, opts Options, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Registry{
		sessions: make(map[string]*entry),
		gateway:  gateway,
		opts:     opts.withDefaults(),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Open loads workflowID into a new session and registers it.
func (r *Registry) Open(ctx context.Context, workflowID string, readOnly bool) (string, *Session, error) {
	opts := r.opts
	opts.ReadOnly = readOnly
	s, err := Open(ctx, r.gateway, workflowID, opts)
	if err != nil {
		return "", nil, err
	}
	id, err := GenerateID()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &entry{session: s, lastUsed: r.now()}
	opts.Logger.Debug("opened editor session", "workflow", workflowID, "readOnly", readOnly, "open", len(r.sessions))
	return id, s, nil
}

// Get returns the session with the given ID and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := r.now()
	if now.Sub(e.lastUsed) > r.ttl {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	e.lastUsed = now
	return e.session, nil
}

// Close unregisters a session. Unsaved edits are discarded.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Cleanup drops sessions idle for longer than the TTL and returns how many
// were dropped.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) > r.ttl {
			if e.session.Dirty() {
				r.opts.Logger.Warn("dropping idle session with unsaved edits", "workflow", e.session.ID())
			}
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseWorkflow unregisters every session of a workflow, as after deleting
// it.
func (r *Registry) CloseWorkflow(workflowID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if e.session.ID() == workflowID {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
