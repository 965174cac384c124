// Package api serves the mirror operation and sketch storage over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/mirror"
	"github.com/VorpalBlade/smartmirror/internal/sketch"
	"github.com/VorpalBlade/smartmirror/internal/snapshot"
	"github.com/VorpalBlade/smartmirror/internal/typeid"
)

type Handler struct {
	repo snapshot.Repository
	opts mirror.Options

	// serialises load-mirror-save cycles on stored sketches
	mu sync.Mutex
}

func NewHandler(repo snapshot.Repository, opts mirror.Options) *Handler {
	return &Handler{repo: repo, opts: opts}
}

// NewRouter wires the handler's routes and middleware.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(Recovery)
	r.Use(Logger)

	r.HandleFunc("/health", h.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/mirror", h.Mirror).Methods("POST")
	api.HandleFunc("/sketches/{sketchId}", h.PutSketch).Methods("PUT")
	api.HandleFunc("/sketches/{sketchId}", h.GetSketch).Methods("GET")
	api.HandleFunc("/sketches/{sketchId}/mirror", h.MirrorStored).Methods("POST")
	return r
}

type mirrorRequest struct {
	Sketch    *document.Sketch `json:"sketch"`
	Selection []string         `json:"selection"`
}

type mirrorResponse struct {
	Sketch  *document.Sketch `json:"sketch"`
	Result  *mirror.Result   `json:"result"`
	Version int              `json:"version,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Mirror applies the mirror to the sketch in the request body without storing anything.
func (h *Handler) Mirror(w http.ResponseWriter, r *http.Request) {
	var req mirrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Sketch == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	st, err := sketch.NewStore(req.Sketch)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := mirror.Apply(r.Context(), st, req.Selection, h.opts)
	if err != nil {
		writeMirrorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mirrorResponse{Sketch: st.Sketch(), Result: res})
}

func (h *Handler) PutSketch(w http.ResponseWriter, r *http.Request) {
	sketchID, ok := sketchIDVar(w, r)
	if !ok {
		return
	}

	var sk document.Sketch
	if err := json.NewDecoder(r.Body).Decode(&sk); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sk.ID = sketchID
	if _, err := sketch.NewStore(&sk); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	version, err := h.repo.Save(r.Context(), sketchID, &sk)
	if err != nil {
		handleRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": sketchID, "version": version})
}

func (h *Handler) GetSketch(w http.ResponseWriter, r *http.Request) {
	sketchID, ok := sketchIDVar(w, r)
	if !ok {
		return
	}

	snap, err := h.repo.Latest(r.Context(), sketchID)
	if err != nil {
		handleRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// MirrorStored mirrors the latest version of a stored sketch and saves the outcome as a
// new version.
func (h *Handler) MirrorStored(w http.ResponseWriter, r *http.Request) {
	sketchID, ok := sketchIDVar(w, r)
	if !ok {
		return
	}

	var req struct {
		Selection []string `json:"selection"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.repo.Latest(r.Context(), sketchID)
	if err != nil {
		handleRepoError(w, err)
		return
	}
	st, err := sketch.NewStore(snap.Sketch)
	if err != nil {
		slog.Error("stored sketch is invalid", "sketch", sketchID, "version", snap.Version, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	res, err := mirror.Apply(r.Context(), st, req.Selection, h.opts)
	if err != nil {
		writeMirrorError(w, err)
		return
	}

	out := st.Sketch()
	version, err := h.repo.Save(r.Context(), sketchID, out)
	if err != nil {
		handleRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mirrorResponse{Sketch: out, Result: res, Version: version})
}

func sketchIDVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["sketchId"]
	if err := typeid.Validate(id, typeid.PrefixSketch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sketch id"})
		return "", false
	}
	return id, true
}

func writeMirrorError(w http.ResponseWriter, err error) {
	if mirror.IsUsageError(err) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": mirror.Describe(err)})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": mirror.Describe(err)})
}

func handleRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		slog.Error("snapshot store error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
