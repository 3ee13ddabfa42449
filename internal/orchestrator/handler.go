package orchestrator

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const smilContentType = "application/smil+xml"

// Handler exposes the published renderings over HTTP using go-chi.
type Handler struct {
	repo Repository
	log  *slog.Logger
}

// NewHandler returns a Handler that reads from repo.
func NewHandler(repo Repository, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// ListOutputs handles GET /outputs.
func (h *Handler) ListOutputs(w http.ResponseWriter, r *http.Request) {
	names := h.repo.Names()
	h.writeJSON(w, map[string][]string{"outputs": names})
}

// GetPlaylist handles GET /outputs/{name}/playlist.smil.
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rendering, ok := h.repo.Latest(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", smilContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(rendering.Markup)
}

// GetPeriod handles GET /outputs/{name}/period.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rendering, ok := h.repo.Latest(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, rendering)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.log.Error("encode response failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
