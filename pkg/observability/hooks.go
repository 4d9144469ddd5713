// Package observability lets library packages report events without
// depending on a metrics backend.
//
// Each subsystem has a small hook interface. The binary installs concrete
// implementations once at startup; until then every hook is a no-op.
//
//	observability.SetEditorHooks(m)
//	observability.SetLayoutHooks(m)
//
// Libraries fetch the current hooks at the call site:
//
//	hooks := observability.Layout()
//	hooks.OnLayoutStart(ctx, "LR", len(nodes))
//	// ... run layout ...
//	hooks.OnLayoutComplete(ctx, "LR", crossings, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// EditorHooks receives events from editor sessions.
type EditorHooks interface {
	// OnMutation records a committed mutation. op names the operation
	// ("add_node", "connect", "layout", ...).
	OnMutation(ctx context.Context, op string)
	OnUndo(ctx context.Context)
	OnRedo(ctx context.Context)
	OnSave(ctx context.Context, nodeCount, edgeCount int, duration time.Duration, err error)
}

// LayoutHooks receives events from the layout engine.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, direction string, nodeCount int)
	OnLayoutComplete(ctx context.Context, direction string, crossings int, duration time.Duration, err error)
}

// CacheHooks receives events from the layout and artifact caches. keyType
// is the key namespace, e.g. "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// StoreHooks receives events from persistence backends.
type StoreHooks interface {
	// OnQuery records one backend operation ("load", "save", "list", ...).
	OnQuery(ctx context.Context, backend, op string, duration time.Duration, err error)
}

type (
	NoopEditorHooks struct{}
	NoopLayoutHooks struct{}
	NoopCacheHooks  struct{}
	NoopStoreHooks  struct{}
)

func (NoopEditorHooks) OnMutation(context.Context, string)                     {}
func (NoopEditorHooks) OnUndo(context.Context)                                 {}
func (NoopEditorHooks) OnRedo(context.Context)                                 {}
func (NoopEditorHooks) OnSave(context.Context, int, int, time.Duration, error) {}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopStoreHooks) OnQuery(context.Context, string, string, time.Duration, error) {}

// slot holds the installed implementation of one hook interface.
type slot[T any] struct {
	v    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[T]) set(h T) { s.v.Store(&h) }

func (s *slot[T]) reset() { s.v.Store(nil) }

var (
	editor = slot[EditorHooks]{noop: NoopEditorHooks{}}
	layout = slot[LayoutHooks]{noop: NoopLayoutHooks{}}
	cache  = slot[CacheHooks]{noop: NoopCacheHooks{}}
	store  = slot[StoreHooks]{noop: NoopStoreHooks{}}
)

// SetEditorHooks installs h. A nil h is ignored.
func SetEditorHooks(h EditorHooks) {
	if h != nil {
		editor.set(h)
	}
}

// SetLayoutHooks installs h. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		layout.set(h)
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cache.set(h)
	}
}

// SetStoreHooks installs h. A nil h is ignored.
func SetStoreHooks(h StoreHooks) {
	if h != nil {
		store.set(h)
	}
}

func Editor() EditorHooks { return editor.get() }
func Layout() LayoutHooks { return layout.get() }
func Cache() CacheHooks   { return cache.get() }
func Store() StoreHooks   { return store.get() }

// Reset restores the no-op hooks. Tests that install hooks should defer it.
func Reset() {
	editor.reset()
	layout.reset()
	cache.reset()
	store.reset()
}
