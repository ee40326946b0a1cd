package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/islandlink/pkg/errors"
	"github.com/matzehuels/islandlink/pkg/pipeline"
	"github.com/matzehuels/islandlink/pkg/store"
)

type memHistory struct {
	runs []store.Run
}

func (m *memHistory) SaveRun(_ context.Context, source string, res *pipeline.Result) (store.Run, error) {
	run := store.Run{ID: "3f1f8b62-3c1c-4d8e-9a56-0a8b7a3c9c11", Source: source, CreatedAt: time.Now(), GroupCount: len(res.Groups)}
	m.runs = append(m.runs, run)
	return run, nil
}

func (m *memHistory) ListRuns(_ context.Context, limit int) ([]store.Run, error) {
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *memHistory) GetRun(_ context.Context, id string) (store.Run, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return store.Run{}, errors.New(errors.ErrCodeNotFound, "run %q not found", id)
}

func newTestServer(history History) http.Handler {
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(runner, history, logger, Options{}).Handler()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestHealthz(t *testing.T) {
	code, env := do(t, newTestServer(nil), http.MethodGet, "/healthz", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("status %d, env %+v", code, env)
	}
	if !bytes.Contains(env.Data, []byte(`"status":"ok"`)) {
		t.Errorf("data = %s", env.Data)
	}
}

func TestSolve(t *testing.T) {
	h := newTestServer(&memHistory{})
	body := `{"groups": [
		{"sites": [{"x": 0, "y": 0, "population": 0}, {"x": 3, "y": 4, "population": 10}]},
		{"name": "west", "sites": [{"x": 0, "y": 0, "population": 0}, {"x": 0, "y": 3, "population": 1}, {"x": 1, "y": 3, "population": 3}]}
	], "formats": ["dot"]}`

	code, env := do(t, h, http.MethodPost, "/v1/solve", body)
	if code != http.StatusOK {
		t.Fatalf("status %d, error %+v", code, env.Error)
	}

	var resp SolveResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.RunID == "" {
		t.Error("run should be recorded")
	}
	if len(resp.Groups) != 2 {
		t.Fatalf("got %d groups", len(resp.Groups))
	}
	if resp.Groups[0].Report != "Island Group: 1 Average 5.00" {
		t.Errorf("report = %q", resp.Groups[0].Report)
	}
	if resp.Groups[1].Report != "Island Group: 2 Average 3.75" {
		t.Errorf("report = %q", resp.Groups[1].Report)
	}
	if resp.Groups[1].Name != "west" || resp.Groups[1].Commits != 1 {
		t.Errorf("group 2 = %+v", resp.Groups[1].GroupResult)
	}
	if !strings.Contains(resp.Groups[1].Artifacts["dot"], "n2 -- n1;") {
		t.Errorf("dot artifact = %q", resp.Groups[1].Artifacts["dot"])
	}
}

func TestSolveErrors(t *testing.T) {
	tooMany := `{"x": 1, "y": 1, "population": 1},`
	tests := []struct {
		name   string
		body   string
		status int
		code   string
		group  int
	}{
		{"malformed", `{"groups": [`, http.StatusBadRequest, "INVALID_FORMAT", 0},
		{"unknown field", `{"groups": [], "colour": 1}`, http.StatusBadRequest, "INVALID_FORMAT", 0},
		{"no groups", `{"groups": []}`, http.StatusBadRequest, "INVALID_INPUT", 0},
		{"empty group", `{"groups": [{"sites": []}]}`, http.StatusBadRequest, "INVALID_INPUT", 0},
		{"bad format", `{"groups": [{"sites": [{"x": 0, "y": 0, "population": 1}]}], "formats": ["gif"]}`, http.StatusBadRequest, "INVALID_INPUT", 0},
		{"negative population", `{"groups": [{"sites": [{"x": 0, "y": 0, "population": 1}]}, {"sites": [{"x": 0, "y": 0, "population": -1}]}]}`, http.StatusBadRequest, "INVALID_RECORD", 2},
		{"too large", `{"groups": [{"sites": [` + strings.Repeat(tooMany, 50) + `{"x": 0, "y": 0, "population": 1}]}]}`, http.StatusRequestEntityTooLarge, "GROUP_TOO_LARGE", 1},
		{"no inhabitants", `{"groups": [{"sites": [{"x": 0, "y": 0, "population": 0}, {"x": 1, "y": 0, "population": 0}]}]}`, http.StatusUnprocessableEntity, "ZERO_POPULATION", 1},
	}
	h := newTestServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodPost, "/v1/solve", tt.body)
			if code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
			if env.Success || env.Error == nil {
				t.Fatalf("expected error envelope, got %+v", env)
			}
			if env.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", env.Error.Code, tt.code, env.Error.Message)
			}
			if env.Error.Group != tt.group {
				t.Errorf("group = %d, want %d", env.Error.Group, tt.group)
			}
		})
	}
}

func TestRuns(t *testing.T) {
	hist := &memHistory{}
	h := newTestServer(hist)

	body := `{"source": "test", "groups": [{"sites": [{"x": 0, "y": 0, "population": 1}]}]}`
	if code, env := do(t, h, http.MethodPost, "/v1/solve", body); code != http.StatusOK {
		t.Fatalf("solve: %d %+v", code, env.Error)
	}

	code, env := do(t, h, http.MethodGet, "/v1/runs?limit=5", "")
	if code != http.StatusOK {
		t.Fatalf("list: %d", code)
	}
	var runs []store.Run
	if err := json.Unmarshal(env.Data, &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Source != "test" {
		t.Errorf("runs = %+v", runs)
	}

	code, _ = do(t, h, http.MethodGet, "/v1/runs/"+runs[0].ID, "")
	if code != http.StatusOK {
		t.Errorf("get: %d", code)
	}

	code, env = do(t, h, http.MethodGet, "/v1/runs/missing", "")
	if code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Errorf("missing run: %d %+v", code, env.Error)
	}

	code, _ = do(t, h, http.MethodGet, "/v1/runs?limit=zero", "")
	if code != http.StatusBadRequest {
		t.Errorf("bad limit: %d", code)
	}
}

func TestRunsDisabled(t *testing.T) {
	code, env := do(t, newTestServer(nil), http.MethodGet, "/v1/runs", "")
	if code != http.StatusNotImplemented || env.Error.Code != "UNSUPPORTED" {
		t.Errorf("status %d, error %+v", code, env.Error)
	}
}
