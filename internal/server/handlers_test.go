package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/config"
	"github.com/hyperjump/docintel/internal/control"
	"github.com/hyperjump/docintel/internal/convert"
	"github.com/hyperjump/docintel/internal/ingest"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/pipeline"
	"github.com/hyperjump/docintel/internal/sink"
)

// withChiURLParam injects a chi URL param into the request context, mirroring
// what the router does at dispatch time, so handlers can be unit-tested
// without going through chi's mux.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type mockWatchService struct {
	dirs []string
}

func (m *mockWatchService) Directories() []string {
	return append([]string(nil), m.dirs...)
}

func (m *mockWatchService) AddDirectory(path string, _ bool) error {
	for _, d := range m.dirs {
		if d == path {
			return nil
		}
	}
	m.dirs = append(m.dirs, path)
	return nil
}

func (m *mockWatchService) RemoveDirectory(path string) error {
	for i, d := range m.dirs {
		if d == path {
			m.dirs = append(m.dirs[:i], m.dirs[i+1:]...)
			return nil
		}
	}
	return nil
}

func testBundle(t *testing.T) *control.Bundle {
	t.Helper()
	bundle, err := control.Init("../corpus/testdata/manifest.yaml", nil)
	if err != nil {
		t.Fatalf("control.Init: %v", err)
	}
	return bundle
}

func testServer(t *testing.T, watchSvc WatchDirectoryService, configPath string, fullCfg *config.Config) (*Server, *sink.SQLiteSink) {
	t.Helper()
	dir := t.TempDir()
	sqliteSink, err := sink.NewSQLiteSink(filepath.Join(dir, "docs.sqlite"))
	if err != nil {
		t.Fatalf("NewSQLiteSink: %v", err)
	}
	t.Cleanup(func() { _ = sqliteSink.Close() })

	p := pipeline.New(pipeline.DefaultConfig(), testBundle(t), sqliteSink, zap.NewNop())
	g := ingest.New(convert.NewRegistry(), ingest.DefaultOptions(), nil, p.IngestOutput())
	p.SetIngest(g)

	srv := NewServer(p, sqliteSink, &config.ServerConfig{Port: 8080}, zap.NewNop(), watchSvc, configPath, fullCfg)
	return srv, sqliteSink
}

func TestHandleSubmitDocument(t *testing.T) {
	srv, _ := testServer(t, nil, "", nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]string{"source_kind": "file", "source_ref": path})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSubmitDocument(w, r)
	if w.Code != http.StatusAccepted {
		t.Errorf("status: got %d, body: %s", w.Code, w.Body.String())
	}
}

func TestHandleSubmitDocument_MissingSourceRef(t *testing.T) {
	srv, _ := testServer(t, nil, "", nil)

	body, _ := json.Marshal(map[string]string{"source_kind": "file"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSubmitDocument(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSubmitDocument_InvalidSourceKind(t *testing.T) {
	srv, _ := testServer(t, nil, "", nil)

	body, _ := json.Marshal(map[string]string{"source_kind": "ftp", "source_ref": "x"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSubmitDocument(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleGetDocument_NotFound(t *testing.T) {
	srv, _ := testServer(t, nil, "", nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing", nil)
	r = withChiURLParam(r, "id", "missing")
	w := httptest.NewRecorder()
	srv.handleGetDocument(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleGetDocument_Found(t *testing.T) {
	srv, sqliteSink := testServer(t, nil, "", nil)

	record := models.DocumentRecord{DocumentID: "doc-1", Status: models.StatusOK}
	if _, err := sqliteSink.Accept(record); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1", nil)
	r = withChiURLParam(r, "id", "doc-1")
	w := httptest.NewRecorder()
	srv.handleGetDocument(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, body: %s", w.Code, w.Body.String())
	}
}

func TestHandleStatus(t *testing.T) {
	srv, sqliteSink := testServer(t, nil, "", nil)

	if _, err := sqliteSink.Accept(models.DocumentRecord{DocumentID: "doc-1", Status: models.StatusOK}); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		StoredByStatus map[string]int64 `json:"stored_by_status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.StoredByStatus["ok"] != 1 {
		t.Errorf("stored_by_status[ok]: got %d, want 1", out.StoredByStatus["ok"])
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t, nil, "", nil)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleWatchDirectoriesList(t *testing.T) {
	mock := &mockWatchService{dirs: []string{"/tmp/docs"}}
	srv, _ := testServer(t, mock, "", nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/watch/directories", nil)
	w := httptest.NewRecorder()
	srv.handleWatchDirectoriesList(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	var out struct {
		Directories []string `json:"directories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Directories) != 1 || out.Directories[0] != "/tmp/docs" {
		t.Errorf("directories: got %v", out.Directories)
	}
}

func TestHandleWatchDirectoriesList_NotEnabled(t *testing.T) {
	srv, _ := testServer(t, nil, "", nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/watch/directories", nil)
	w := httptest.NewRecorder()
	srv.handleWatchDirectoriesList(w, r)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status: got %d, want 501", w.Code)
	}
}

func TestHandleWatchDirectoriesAdd(t *testing.T) {
	mock := &mockWatchService{}
	srv, _ := testServer(t, mock, "", nil)
	dir := t.TempDir()

	body, _ := json.Marshal(map[string]string{"path": dir})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/watch/directories", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleWatchDirectoriesAdd(w, r)
	if w.Code != http.StatusCreated {
		t.Errorf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	if len(mock.Directories()) != 1 {
		t.Errorf("expected 1 directory, got %v", mock.Directories())
	}
}

func TestHandleWatchDirectoriesAdd_InvalidPath(t *testing.T) {
	mock := &mockWatchService{}
	srv, _ := testServer(t, mock, "", nil)
	dir := t.TempDir()

	body, _ := json.Marshal(map[string]string{"path": dir + "/nonexistent"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/watch/directories", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleWatchDirectoriesAdd(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleWatchDirectoriesRemove(t *testing.T) {
	dir := t.TempDir()
	mock := &mockWatchService{dirs: []string{dir}}
	srv, _ := testServer(t, mock, "", nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/watch/directories?path="+dir, nil)
	w := httptest.NewRecorder()
	srv.handleWatchDirectoriesRemove(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	if len(mock.Directories()) != 0 {
		t.Errorf("expected 0 directories, got %v", mock.Directories())
	}
}

func TestHandleWatchDirectoriesAdd_PersistsConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	fullCfg := &config.Config{}
	mock := &mockWatchService{}
	srv, _ := testServer(t, mock, configPath, fullCfg)

	body, _ := json.Marshal(map[string]string{"path": dir})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/watch/directories", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleWatchDirectoriesAdd(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("expected config persisted to %s: %v", configPath, err)
	}
}
