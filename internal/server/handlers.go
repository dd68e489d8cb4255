package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/config"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/pkg/utils"
)

// submitRequest is the wire shape of POST /api/v1/documents. DocumentID is
// optional — Ingest (S1) assigns one via uuid when omitted.
type submitRequest struct {
	DocumentID string `json:"document_id"`
	SourceKind string `json:"source_kind"`
	SourceRef  string `json:"source_ref"`
}

func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceRef == "" {
		s.respondError(w, http.StatusBadRequest, "source_ref is required")
		return
	}
	kind := models.SourceKind(req.SourceKind)
	if kind != models.SourceFile && kind != models.SourceURL {
		s.respondError(w, http.StatusBadRequest, "source_kind must be \"file\" or \"url\"")
		return
	}

	item := models.WorkItem{
		DocumentID: req.DocumentID,
		SourceKind: kind,
		SourceRef:  req.SourceRef,
	}
	if s.logger != nil {
		s.logger.Debug("submit document request", zap.String("source_ref", utils.Truncate(item.SourceRef, 200)), zap.String("source_kind", string(item.SourceKind)))
	}
	if err := s.pipeline.Submit(r.Context(), item); err != nil {
		if s.logger != nil {
			s.logger.Error("submit failed", zap.Error(err))
		}
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]string{"source_ref": item.SourceRef, "status": "submitted"})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.records.CountByStatus(r.Context())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("status: count by status failed", zap.Error(err))
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"stored_by_status": counts,
	}
	if s.pipeline != nil {
		c := s.pipeline.Counters
		resp["counters"] = map[string]int64{
			"documents_ingested":  c.DocumentsIngested.Load(),
			"documents_processed": c.DocumentsProcessed.Load(),
			"documents_partial":   c.DocumentsPartial.Load(),
			"documents_failed":    c.DocumentsFailed.Load(),
			"documents_emitted":   c.DocumentsEmitted.Load(),
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	dirs := s.watch.Directories()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": dirs})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	if s.logger != nil {
		s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	}
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		if s.logger != nil {
			s.logger.Error("watch add directory failed", zap.Error(err))
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if s.logger != nil {
		s.logger.Debug("watch remove directory request", zap.String("path", abs))
	}
	if err := s.watch.RemoveDirectory(abs); err != nil {
		if s.logger != nil {
			s.logger.Error("watch remove directory failed", zap.Error(err))
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistWatchDirectories saves the current watch directory list to
// configPath, when the server was built with one. Failures are logged, not
// returned, matching the teacher's best-effort persistence after a
// directory add/remove has already taken effect in memory.
func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.fullCfg == nil || s.watch == nil {
		return
	}
	s.fullCfgMu.Lock()
	s.fullCfg.Watch.Directories = s.watch.Directories()
	err := config.Save(s.configPath, s.fullCfg)
	s.fullCfgMu.Unlock()
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
