package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aaronmarkham/studioproducer/internal/models"
	"github.com/aaronmarkham/studioproducer/internal/queue"
	"github.com/aaronmarkham/studioproducer/internal/runstore"
	"github.com/aaronmarkham/studioproducer/internal/storage"
)

type Handler struct {
	store   *runstore.Store
	queue   *queue.Queue
	storage *storage.Storage
}

func NewHandler(store *runstore.Store, q *queue.Queue, stor *storage.Storage) *Handler {
	return &Handler{
		store:   store,
		queue:   q,
		storage: stor,
	}
}

// CreateRunRequest is the body of POST /v1/runs.
type CreateRunRequest struct {
	Concept     string  `json:"concept"`
	TotalBudget float64 `json:"total_budget"`
}

// CreateRunResponse is the body of POST /v1/runs.
type CreateRunResponse struct {
	RunID  string           `json:"run_id"`
	Status models.RunStatus `json:"status"`
}

// CreateRun handles POST /v1/runs: persists a new queued run and
// enqueues it for the worker pool to pick up.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Concept == "" {
		respondError(w, http.StatusBadRequest, "concept is required")
		return
	}
	if req.TotalBudget <= 0 {
		respondError(w, http.StatusBadRequest, "total_budget must be positive")
		return
	}

	run := &models.ProductionRun{
		RunID:       "run_" + uuid.New().String(),
		Concept:     req.Concept,
		TotalBudget: req.TotalBudget,
		Status:      models.RunStatusQueued,
	}

	if err := h.store.Create(r.Context(), run); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create production run")
		return
	}

	if err := h.queue.EnqueueProductionRun(r.Context(), run.RunID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue production run")
		return
	}

	respondJSON(w, http.StatusCreated, CreateRunResponse{
		RunID:  run.RunID,
		Status: run.Status,
	})
}

// ListRuns handles GET /v1/runs.
// Query params:
//   - status: filter by run status (queued, running, completed, failed)
//   - limit:  max results per page (default 20, max 100)
//   - offset: number of results to skip (default 0)
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" {
		switch models.RunStatus(statusFilter) {
		case models.RunStatusQueued, models.RunStatusRunning,
			models.RunStatusCompleted, models.RunStatusFailed:
			// valid
		default:
			respondError(w, http.StatusBadRequest, "Invalid status filter. Allowed: queued, running, completed, failed")
			return
		}
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	runs, err := h.store.List(r.Context(), statusFilter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list production runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"runs":   runs,
		"limit":  limit,
		"offset": offset,
	})
}

// GetRun handles GET /v1/runs/{id}: returns the run's current status,
// and its result/EDL once it has completed.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	run, err := h.store.Get(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Production run not found")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// GetRunEDL handles GET /v1/runs/{id}/edl: redirects to the signed
// download URL for the winning pilot's EDL artifact, once available.
func (h *Handler) GetRunEDL(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	run, err := h.store.Get(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Production run not found")
		return
	}
	if run.Status != models.RunStatusCompleted || run.EDL == nil {
		respondError(w, http.StatusNotFound, "EDL not ready")
		return
	}

	signedURL, err := h.storage.GetSignedURL(r.Context(), h.storage.GenerateStoragePath(runID, "edl.json"), 3600)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}

	http.Redirect(w, r, signedURL, http.StatusTemporaryRedirect)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
