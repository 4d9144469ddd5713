package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archflow/pkg/graph"
)

type workflowRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type kindsResponse struct {
	Categories []graph.Category `json:"categories"`
	Kinds      []graph.Kind     `json:"kinds"`
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, kindsResponse{Categories: graph.Categories(), Kinds: graph.Kinds()})
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	wfs, err := s.store.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wfs)
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	wf, err := s.store.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("created workflow", "id", wf.ID, "name", wf.Name)
	writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) handleRenameWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req := workflowRequest{Name: current.Name, Description: current.Description}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	wf, err := s.store.Rename(r.Context(), id, req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if n := s.sessions.CloseWorkflow(id); n > 0 {
		s.logger.Info("closed sessions of deleted workflow", "id", id, "sessions", n)
	}
	w.WriteHeader(http.StatusNoContent)
}

type graphResponse struct {
	Workflow graph.Workflow  `json:"workflow"`
	Document *graph.Document `json:"document"`
}

// handleGetGraph serves the read-only view of a workflow.
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wf, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graphResponse{Workflow: wf, Document: doc})
}
