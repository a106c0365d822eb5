package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"media-browser/internal/filesystem"
	"media-browser/internal/logging"
	"media-browser/internal/media"
)

// GetThumbnail serves a thumbnail from the cache directory of the root at
// the given index. Paths escaping the cache directory are rejected.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idx, err := strconv.Atoi(vars["root"])
	if err != nil || vars["path"] == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	_, roots, err := h.request()
	if err != nil {
		http.Error(w, "Failed to read config", http.StatusInternalServerError)
		return
	}
	if idx < 0 || idx >= len(roots) {
		http.Error(w, "Unknown root", http.StatusNotFound)
		return
	}

	cacheDir := media.CacheDir(roots[idx].RootDir, h.cacheDirName)
	fullPath := filepath.Join(cacheDir, filepath.FromSlash(vars["path"]))
	if !isSubPath(cacheDir, fullPath) {
		logging.Warn("Thumbnail: path outside cache dir: %s", vars["path"])
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(filepath.Ext(fullPath), media.ThumbnailExtension) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	info, err := filesystem.StatWithRetry(fullPath, h.retry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "Thumbnail not found", http.StatusNotFound)
		} else {
			logging.Error("Thumbnail: failed to stat %s: %v", fullPath, err)
			http.Error(w, "Failed to access thumbnail", http.StatusInternalServerError)
		}
		return
	}
	if info.IsDir() {
		http.Error(w, "Thumbnail not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(fullPath)
	if err != nil {
		http.Error(w, "Failed to access thumbnail", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// isSubPath reports whether child is parent or lies beneath it.
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
