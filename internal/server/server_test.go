package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archflow/pkg/errors"
	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store/memory"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := memory.New()
	if err := st.Seed(memory.Samples(time.Now())); err != nil {
		t.Fatal(err)
	}
	s := New(Options{
		Store:   st,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "# metrics\n") }),
		Logger:  log.New(io.Discard),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

// do sends a request and decodes the JSON response into out when non-nil.
func (ts *testServer) do(method, path string, body any, out any) int {
	ts.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	if err != nil {
		ts.t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			ts.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	if code := ts.do("GET", "/healthz", nil, &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /healthz = %d %v", code, body)
	}
	if code := ts.do("GET", "/metrics", nil, nil); code != http.StatusOK {
		t.Errorf("GET /metrics = %d", code)
	}
}

func TestKinds(t *testing.T) {
	ts := newTestServer(t)
	var body kindsResponse
	ts.do("GET", "/api/kinds", nil, &body)
	if len(body.Categories) != 7 {
		t.Errorf("categories = %d, want 7", len(body.Categories))
	}
	if len(body.Kinds) == 0 {
		t.Error("no kinds returned")
	}
}

func TestWorkflowCRUD(t *testing.T) {
	ts := newTestServer(t)

	var list []graph.Workflow
	ts.do("GET", "/api/workflows?q=draw", nil, &list)
	if len(list) != 3 {
		t.Errorf("GET /api/workflows?q=draw returned %d workflows, want 3", len(list))
	}

	var wf graph.Workflow
	if code := ts.do("POST", "/api/workflows", workflowRequest{Name: "Checkout", Description: "Payments"}, &wf); code != http.StatusCreated {
		t.Fatalf("POST /api/workflows = %d", code)
	}

	var renamed graph.Workflow
	ts.do("PATCH", "/api/workflows/"+wf.ID, map[string]string{"name": "Checkout v2"}, &renamed)
	if renamed.Name != "Checkout v2" || renamed.Description != "Payments" {
		t.Errorf("PATCH kept %+v, want new name and old description", renamed)
	}

	var g graphResponse
	if code := ts.do("GET", "/api/workflows/"+wf.ID+"/graph", nil, &g); code != http.StatusOK {
		t.Fatalf("GET graph = %d", code)
	}
	if len(g.Document.Nodes) != 0 || g.Workflow.ID != wf.ID {
		t.Errorf("graph = %+v", g)
	}

	if code := ts.do("DELETE", "/api/workflows/"+wf.ID, nil, nil); code != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", code)
	}
	var e errorBody
	if code := ts.do("GET", "/api/workflows/"+wf.ID, nil, &e); code != http.StatusNotFound {
		t.Errorf("GET deleted = %d, want 404", code)
	}
	if e.Error.Code != errors.ErrCodeWorkflowNotFound {
		t.Errorf("error code = %q, want WORKFLOW_NOT_FOUND", e.Error.Code)
	}
}

func TestCreateWorkflowInvalid(t *testing.T) {
	ts := newTestServer(t)
	var e errorBody
	if code := ts.do("POST", "/api/workflows", workflowRequest{Name: ""}, &e); code != http.StatusBadRequest {
		t.Errorf("POST empty name = %d, want 400", code)
	}
	if e.Error.Code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %q", e.Error.Code)
	}
}

func TestEditorSession(t *testing.T) {
	ts := newTestServer(t)

	var open sessionResponse
	if code := ts.do("POST", "/api/sessions", openSessionRequest{WorkflowID: "wf-1"}, &open); code != http.StatusCreated {
		t.Fatalf("POST /api/sessions = %d", code)
	}
	if !open.Loaded || open.Dirty || len(open.Document.Nodes) != 3 {
		t.Fatalf("opened session = %+v", open.Snapshot)
	}
	base := "/api/sessions/" + open.SessionID

	var added sessionResponse
	ts.do("POST", base+"/nodes", addNodeRequest{Kind: "redis", Position: graph.Position{X: 700, Y: 150}}, &added)
	if added.Created == "" || !added.Dirty || !added.CanUndo {
		t.Fatalf("add node response = %+v", added)
	}

	var connected sessionResponse
	ts.do("POST", base+"/edges", connectRequest{Source: "3", Target: added.Created}, &connected)
	if connected.Created == "" || len(connected.Document.Edges) != 3 {
		t.Fatalf("connect response created=%q edges=%d", connected.Created, len(connected.Document.Edges))
	}

	var laid sessionResponse
	if code := ts.do("POST", base+"/layout", layoutRequest{Direction: "TB"}, &laid); code != http.StatusOK {
		t.Fatalf("layout = %d", code)
	}
	if n := laid.Document.Node("1"); n.TargetPosition != graph.HandleTop {
		t.Errorf("TargetPosition = %q, want top", n.TargetPosition)
	}

	var saved sessionResponse
	ts.do("POST", base+"/save", nil, &saved)
	if saved.Dirty {
		t.Error("session dirty after save")
	}

	var g graphResponse
	ts.do("GET", "/api/workflows/wf-1/graph", nil, &g)
	if g.Document.Node(added.Created) == nil {
		t.Error("saved node missing from the stored graph")
	}

	var undone sessionResponse
	ts.do("POST", base+"/undo", nil, &undone)
	if !undone.Dirty || !undone.CanRedo {
		t.Errorf("undo response flags = %+v", undone.Snapshot)
	}

	var deleted sessionResponse
	ts.do("DELETE", base+"/nodes/1", nil, &deleted)
	if deleted.Document.Node("1") != nil {
		t.Error("node 1 still present after DELETE")
	}
	for _, e := range deleted.Document.Edges {
		if e.Source == "1" || e.Target == "1" {
			t.Errorf("edge %s still touches node 1", e.ID)
		}
	}

	if code := ts.do("DELETE", base, nil, nil); code != http.StatusNoContent {
		t.Errorf("DELETE session = %d", code)
	}
	if code := ts.do("GET", base, nil, nil); code != http.StatusNotFound {
		t.Errorf("GET closed session = %d, want 404", code)
	}
}

func TestViewerSession(t *testing.T) {
	ts := newTestServer(t)

	var open sessionResponse
	ts.do("POST", "/api/sessions", openSessionRequest{WorkflowID: "wf-1", ReadOnly: true}, &open)
	base := "/api/sessions/" + open.SessionID

	var e errorBody
	if code := ts.do("POST", base+"/nodes", addNodeRequest{Kind: "redis"}, &e); code != http.StatusForbidden {
		t.Errorf("viewer add node = %d, want 403", code)
	}
	if e.Error.Code != errors.ErrCodeReadOnly {
		t.Errorf("code = %q, want READ_ONLY", e.Error.Code)
	}

	var moved sessionResponse
	if code := ts.do("POST", base+"/nodes/1/move", moveRequest{Position: graph.Position{X: 5, Y: 5}}, &moved); code != http.StatusOK {
		t.Fatalf("viewer move = %d", code)
	}
	if moved.Dirty || moved.Document.Node("1").Position != (graph.Position{X: 5, Y: 5}) {
		t.Errorf("viewer move response = %+v", moved.Snapshot)
	}

	if code := ts.do("POST", base+"/save", nil, nil); code != http.StatusForbidden {
		t.Errorf("viewer save = %d, want 403", code)
	}
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errors.Code
	}{
		{"unknown session", "GET", "/api/sessions/nope", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"missing workflow id", "POST", "/api/sessions", openSessionRequest{}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorBody
			if code := ts.do(tt.method, tt.path, tt.body, &e); code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
			if e.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Error.Code, tt.code)
			}
		})
	}

	var empty sessionResponse
	if code := ts.do("POST", "/api/sessions", openSessionRequest{WorkflowID: "wf-404"}, &empty); code != http.StatusCreated {
		t.Fatalf("open unknown workflow = %d, want 201", code)
	}
	if !empty.Loaded || len(empty.Document.Nodes) != 0 {
		t.Errorf("unknown workflow snapshot = %+v, want empty and loaded", empty.Snapshot)
	}
	var e404 errorBody
	if code := ts.do("POST", "/api/sessions/"+empty.SessionID+"/save", nil, &e404); code != http.StatusNotFound || e404.Error.Code != errors.ErrCodeWorkflowNotFound {
		t.Errorf("save unknown workflow = %d %q, want 404 WORKFLOW_NOT_FOUND", code, e404.Error.Code)
	}

	var open sessionResponse
	ts.do("POST", "/api/sessions", openSessionRequest{WorkflowID: "wf-1"}, &open)
	base := "/api/sessions/" + open.SessionID

	var e errorBody
	if code := ts.do("POST", base+"/layout", layoutRequest{Direction: "diagonal"}, &e); code != http.StatusBadRequest {
		t.Errorf("bad direction = %d, want 400", code)
	}
	if e.Error.Code != errors.ErrCodeInvalidDirection {
		t.Errorf("code = %q", e.Error.Code)
	}

	resp, err := http.Post(ts.srv.URL+base+"/changes", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", resp.StatusCode)
	}
}

func TestChangesAndDefaults(t *testing.T) {
	ts := newTestServer(t)

	var open sessionResponse
	ts.do("POST", "/api/sessions", openSessionRequest{WorkflowID: "wf-1"}, &open)
	base := "/api/sessions/" + open.SessionID

	var sel sessionResponse
	ts.do("POST", base+"/changes", []map[string]any{{"type": "select", "id": "2", "selected": true}}, &sel)
	if sel.Dirty || !sel.Document.Node("2").Selected {
		t.Errorf("select change: dirty=%v selected=%v", sel.Dirty, sel.Document.Node("2").Selected)
	}

	red := graph.NewDefaultEdgeOptions().WithStroke("#ef4444")
	var set sessionResponse
	ts.do("POST", base+"/defaults", red, &set)
	if !set.Dirty || set.CanUndo {
		t.Errorf("defaults response flags = %+v", set.Snapshot)
	}

	var got graph.DefaultEdgeOptions
	ts.do("GET", base+"/defaults", nil, &got)
	if got.Style.Stroke != "#ef4444" {
		t.Errorf("GET defaults stroke = %q", got.Style.Stroke)
	}

	var applied sessionResponse
	ts.do("POST", base+"/defaults/apply", nil, &applied)
	for _, e := range applied.Document.Edges {
		if e.Style.Stroke != "#ef4444" {
			t.Errorf("edge %s stroke = %q after apply", e.ID, e.Style.Stroke)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeNotFound, 404},
		{errors.ErrCodeWorkflowNotFound, 404},
		{errors.ErrCodeInvalidInput, 400},
		{errors.ErrCodeInvalidDirection, 400},
		{errors.ErrCodeInvalidNodeKind, 400},
		{errors.ErrCodeReadOnly, 403},
		{errors.ErrCodeNotLoaded, 409},
		{errors.ErrCodeStorage, 500},
		{errors.ErrCodeInternal, 500},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
