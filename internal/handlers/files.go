package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/pipeline"
)

// ListFiles runs the pipeline and returns every file. A request superseded
// by a newer one gets 409 Conflict.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	req, roots, err := h.request()
	if err != nil {
		logging.Error("ListFiles: %v", err)
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	files, err := h.controller.ReadFiles(r.Context(), req)
	switch {
	case errors.Is(err, pipeline.ErrCancelled):
		writeJSONError(w, "superseded by a newer request", http.StatusConflict)
		return
	case err != nil:
		logging.Error("ListFiles: %v", err)
		writeJSONError(w, "readFiles failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.lastFiles = len(files)
	h.mu.Unlock()

	index := make(map[string]int, len(roots))
	for i, root := range roots {
		index[root.RootDir] = i
	}
	for i := range files {
		files[i].ThumbnailURL = h.thumbnailURL(index, files[i].FileStatus)
	}

	if files == nil {
		files = []media.FileInfo{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, files)
}

// thumbnailURL maps a file to /api/thumbnail/<root index>/<path inside the cache dir>.
func (h *Handlers) thumbnailURL(index map[string]int, status media.FileStatus) string {
	i, ok := index[status.RootDir]
	if !ok {
		return ""
	}
	rel, err := filepath.Rel(media.CacheDir(status.RootDir, h.cacheDirName), media.ThumbnailPath(h.cacheDirName, status))
	if err != nil {
		return ""
	}

	segments := strings.Split(filepath.ToSlash(rel), "/")
	for j, s := range segments {
		segments[j] = url.PathEscape(s)
	}
	return fmt.Sprintf("/api/thumbnail/%d/%s", i, strings.Join(segments, "/"))
}

// TriggerReindex starts a background run, superseding any run in flight.
func (h *Handlers) TriggerReindex(w http.ResponseWriter, _ *http.Request) {
	req, _, err := h.request()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.startBackground(req)
	writeJSONStatus(w, http.StatusAccepted, "started")
}

// StatusResponse describes the current run.
type StatusResponse struct {
	Phase string `json:"phase"`
	Text  string `json:"text"`
	// Files is the count from the last run that resolved.
	Files int `json:"files"`
}

// GetStatus returns the phase and status line of the current run.
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	files := h.lastFiles
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, StatusResponse{
		Phase: h.controller.Phase().String(),
		Text:  h.controller.StatusText(),
		Files: files,
	})
}
