// Package server exposes workflows and editor sessions over HTTP.
//
// The browser front end drives one [editor.Session] per open canvas: it opens
// a session, posts one request per user action and saves explicitly. Every
// session response carries the full document and the session flags so the
// client can redraw without a second round trip.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/archflow/pkg/editor"
	"github.com/matzehuels/archflow/pkg/store"
)

// maxBodyBytes bounds request bodies. Documents with a few thousand nodes
// stay well below it.
const maxBodyBytes = 8 << 20

// Options configures a [Server].
type Options struct {
	Store    store.Store
	Sessions *editor.Registry

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	store    store.Store
	sessions *editor.Registry
	metrics  http.Handler
	logger   *log.Logger
	router   chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Sessions == nil {
		opts.Sessions = editor.NewRegistry(opts.Store, editor.Options{Logger: opts.Logger}, 0)
	}
	s := &Server{
		store:    opts.Store,
		sessions: opts.Sessions,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/kinds", s.handleKinds)

		api.Route("/workflows", func(wr chi.Router) {
			wr.Get("/", s.handleListWorkflows)
			wr.Post("/", s.handleCreateWorkflow)
			wr.Get("/{id}", s.handleGetWorkflow)
			wr.Patch("/{id}", s.handleRenameWorkflow)
			wr.Delete("/{id}", s.handleDeleteWorkflow)
			wr.Get("/{id}/graph", s.handleGetGraph)
		})

		api.Route("/sessions", func(sr chi.Router) {
			sr.Post("/", s.handleOpenSession)
			sr.Route("/{sid}", func(one chi.Router) {
				one.Get("/", s.handleGetSession)
				one.Delete("/", s.handleCloseSession)

				one.Post("/nodes", s.handleAddNode)
				one.Delete("/nodes/{nid}", s.handleDeleteNode)
				one.Post("/nodes/{nid}/data", s.handleUpdateNodeData)
				one.Post("/nodes/{nid}/style", s.handleUpdateNodeStyle)
				one.Post("/nodes/{nid}/move", s.handleMoveNode)
				one.Post("/nodes/{nid}/drop", s.handleDropNode)
				one.Post("/nodes/{nid}/duplicate", s.handleDuplicateNode)
				one.Post("/nodes/{nid}/reparent", s.handleReparent)
				one.Post("/groups/{nid}/toggle", s.handleToggleGroup)

				one.Post("/edges", s.handleConnect)
				one.Post("/edges/{eid}", s.handleUpdateEdge)
				one.Delete("/edges/{eid}", s.handleDeleteEdge)

				one.Post("/changes", s.handleChanges)
				one.Post("/layout", s.handleLayout)
				one.Post("/undo", s.handleUndo)
				one.Post("/redo", s.handleRedo)
				one.Get("/defaults", s.handleGetDefaults)
				one.Post("/defaults", s.handleSetDefaults)
				one.Post("/defaults/apply", s.handleApplyDefaults)
				one.Post("/save", s.handleSave)
			})
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout. Idle editor sessions are swept while
// the server runs.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx, 5*time.Minute)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.Cleanup(); n > 0 {
				s.logger.Debug("dropped idle sessions", "count", n, "open", s.sessions.Len())
			}
		}
	}
}
