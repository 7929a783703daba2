// internal/web/media.go
//
// Admin media endpoints: multipart image upload to the object store and
// deletion by public URL.  When a replacement upload names its
// predecessor, the old object is cleaned up best-effort after the new
// one is safely stored.
package web

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxUploadBytes bounds the multipart body; program images are photos,
// not archives.
const maxUploadBytes = 10 << 20

func (s *Server) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "Bucket not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Upload error")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key, publicURL, err := s.store.Store(r.Context(), data, contentType,
		r.FormValue("prefix"), header.Filename)
	if err != nil {
		zap.S().Errorw("media upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload error")
		return
	}

	// Replacement upload: drop the object it supersedes.
	if previous := r.FormValue("previous"); previous != "" {
		if err := s.store.Delete(r.Context(), previous); err != nil {
			zap.S().Warnw("previous media cleanup failed", "url", previous, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": key, "url": publicURL})
}

type mediaDeleteRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleMediaDelete(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "Bucket not configured")
		return
	}

	var req mediaDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "No path")
		return
	}

	if err := s.store.Delete(r.Context(), req.URL); err != nil {
		writeError(w, http.StatusInternalServerError, "Delete error")
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}
