package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archflow/pkg/editor"
	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/layout"
	"github.com/matzehuels/archflow/pkg/mutate"
)

type openSessionRequest struct {
	WorkflowID string `json:"workflowId"`
	ReadOnly   bool   `json:"readOnly"`
}

// sessionResponse is returned by every session endpoint. Created holds the
// ID of a node or edge the request added.
type sessionResponse struct {
	SessionID string `json:"sessionId"`
	Created   string `json:"created,omitempty"`
	editor.Snapshot
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (created string, err error)

// withSession resolves {sid}, runs fn and answers with the session snapshot.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn sessionHandler) {
	sid := chi.URLParam(r, "sid")
	sess, err := s.sessions.Get(sid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := fn(w, r, sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sid, Created: created, Snapshot: sess.Snapshot()})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.WorkflowID == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "workflowId is required"))
		return
	}
	sid, sess, err := s.sessions.Open(r.Context(), req.WorkflowID, req.ReadOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sid, Snapshot: sess.Snapshot()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(http.ResponseWriter, *http.Request, *editor.Session) (string, error) {
		return "", nil
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(chi.URLParam(r, "sid")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addNodeRequest is a palette drop: a kind and a canvas coordinate.
type addNodeRequest struct {
	Kind     string          `json:"kind"`
	Position graph.Position  `json:"position"`
	Data     *graph.NodeData `json:"data,omitempty"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var req addNodeRequest
		if err := decode(w, r, &req); err != nil {
			return "", err
		}
		if req.Kind == "" {
			return "", errors.New(errors.ErrCodeInvalidNodeKind, "kind is required")
		}
		return sess.AddNode(r.Context(), req.Kind, req.Position, req.Data)
	})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		return "", sess.DeleteNode(r.Context(), chi.URLParam(r, "nid"))
	})
}

func (s *Server) handleUpdateNodeData(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var patch mutate.NodeDataPatch
		if err := decode(w, r, &patch); err != nil {
			return "", err
		}
		return "", sess.UpdateNodeData(r.Context(), chi.URLParam(r, "nid"), patch)
	})
}

type sizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleUpdateNodeStyle(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var req sizeRequest
		if err := decode(w, r, &req); err != nil {
			return "", err
		}
		return "", sess.UpdateNodeStyle(r.Context(), chi.URLParam(r, "nid"), req.Width, req.Height)
	})
}

type moveRequest struct {
	Position graph.Position `json:"position"`
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var req moveRequest
		if err := decode(w, r, &req); err != nil {
			return "", err
		}
		return "", sess.MoveNode(r.Context(), chi.URLParam(r, "nid"), req.Position)
	})
}

func (s *Server) handleDropNode(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		return "", sess.ReparentOnDrop(r.Context(), chi.URLParam(r, "nid"))
	})
}

func (s *Server) handleDuplicateNode(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		return sess.DuplicateNode(r.Context(), chi.URLParam(r, "nid"))
	})
}

type reparentRequest struct {
	ParentID string `json:"parentId"`
}

func (s *Server) handleReparent(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var req reparentRequest
		if err := decode(w, r, &req); err != nil {
			return "", err
		}
		return "", sess.Reparent(r.Context(), chi.URLParam(r, "nid"), req.ParentID)
	})
}

func (s *Server) handleToggleGroup(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		return "", sess.ToggleGroupCollapse(r.Context(), chi.URLParam(r, "nid"))
	})
}

type connectRequest struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var req connectRequest
		if err := decode(w, r, &req); err != nil {
			return "", err
		}
		return sess.Connect(r.Context(), req.Source, req.Target, req.SourceHandle, req.TargetHandle)
	})
}

func (s *Server) handleUpdateEdge(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var patch mutate.EdgePatch
		if err := decode(w, r, &patch); err != nil {
			return "", err
		}
		return "", sess.UpdateEdge(r.Context(), chi.URLParam(r, "eid"), patch)
	})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		return "", sess.DeleteEdge(r.Context(), chi.URLParam(r, "eid"))
	})
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		var changes []editor.Change
		if err := decode(w, r, &changes); err != nil {
			return "", err
		}
		return "", sess.ApplyChanges(r.Context(), changes)
	})
}

type layoutRequest struct {
	Direction string `json:"direction"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		req := layoutRequest{Direction: string(layout.LR)}
		if err := decode(w, r, &req); err != nil {
			return "", err
		}
		dir, err := layout.ParseDirection(req.Direction)
		if err != nil {
			return "", err
		}
		return "", sess.Layout(r.Context(), dir)
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		_, err := sess.Undo(r.Context())
		return "", err
	})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		_, err := sess.Redo(r.Context())
		return "", err
	})
}

func (s *Server) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.EdgeDefaults())
}

func (s *Server) handleSetDefaults(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		opts := sess.EdgeDefaults()
		if err := decode(w, r, &opts); err != nil {
			return "", err
		}
		return "", sess.SetDefaultEdgeOptions(r.Context(), opts)
	})
}

func (s *Server) handleApplyDefaults(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		return "", sess.ApplyDefaultEdgeStyleToAll(r.Context())
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(w http.ResponseWriter, r *http.Request, sess *editor.Session) (string, error) {
		return "", sess.Save(r.Context())
	})
}
