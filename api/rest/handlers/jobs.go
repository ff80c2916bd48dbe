package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"booking-dispatcher/core/dispatch"
	"booking-dispatcher/core/models"

	"github.com/gorilla/mux"
)

// JobReader is the read side of the job store used by the inspection API
type JobReader interface {
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, status *models.JobStatus, limit int) ([]*models.Job, error)
	Events(ctx context.Context, jobID string, limit int) ([]models.JobEvent, error)
	CountByStatus(ctx context.Context) (map[models.JobStatus]int, error)
}

// JobHandler handles read-only job inspection requests
type JobHandler struct {
	store JobReader
}

// NewJobHandler creates a new job handler
func NewJobHandler(store JobReader) *JobHandler {
	return &JobHandler{store: store}
}

// GetJob handles GET /v1/jobs/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	job, err := h.store.Get(r.Context(), vars["id"])
	if errors.Is(err, dispatch.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch job")
		return
	}

	response := map[string]interface{}{
		"id":         job.ID,
		"location":   job.Location,
		"status":     job.Status,
		"cursor":     job.Cursor,
		"candidates": len(job.Candidates),
		"booking":    job.Booking,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.CurrentCandidate != nil {
		response["current_candidate"] = map[string]interface{}{
			"name":    job.CurrentCandidate.Name,
			"address": job.CurrentCandidate.Address,
		}
	}
	if job.AcceptedBy != nil {
		response["accepted_by"] = map[string]interface{}{
			"name":    job.AcceptedBy.Name,
			"address": job.AcceptedBy.Address,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// ListJobs handles GET /v1/jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		fmt.Sscanf(limitParam, "%d", &limit)
	}

	var status *models.JobStatus
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		s := models.JobStatus(statusParam)
		status = &s
	}

	jobs, err := h.store.List(r.Context(), status, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	items := make([]map[string]interface{}, len(jobs))
	for i, job := range jobs {
		items[i] = map[string]interface{}{
			"id":         job.ID,
			"location":   job.Location,
			"status":     job.Status,
			"cursor":     job.Cursor,
			"created_at": job.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// GetJobEvents handles GET /v1/jobs/{id}/events
func (h *JobHandler) GetJobEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	if _, err := h.store.Get(r.Context(), jobID); err != nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	events, err := h.store.Events(r.Context(), jobID, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	items := make([]map[string]interface{}, len(events))
	for i, event := range events {
		item := map[string]interface{}{
			"at":        event.At,
			"to_status": event.ToStatus,
			"reason":    event.Reason,
		}
		if event.FromStatus != nil {
			item["from_status"] = *event.FromStatus
		}
		items[i] = item
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// GetStats handles GET /v1/stats
func (h *JobHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountByStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	total := 0
	byStatus := make(map[string]int)
	for status, n := range counts {
		byStatus[string(status)] = n
		total += n
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":     total,
		"by_status": byStatus,
	})
}
