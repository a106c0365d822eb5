package handlers

import (
	"encoding/json"
	"net/http"

	"media-browser/internal/config"
	"media-browser/internal/logging"
)

const maxConfigBody = 1 << 20

// GetConfig returns the roots configuration.
func (h *Handlers) GetConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, err := config.Load(h.configPath)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, cfg)
}

// PutConfig validates and saves a new roots configuration, then starts a
// run over the new roots. The saved configuration is returned.
func (h *Handlers) PutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxConfigBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		writeJSONError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
		return
	}
	cfg = config.Validate(cfg)

	h.configMu.Lock()
	err := config.Save(h.configPath, cfg)
	h.configMu.Unlock()
	if err != nil {
		logging.Error("PutConfig: %v", err)
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	logging.Info("Config saved to %s", h.configPath)

	req, _, err := h.request()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.startBackground(req)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, cfg)
}
