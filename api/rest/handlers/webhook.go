package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"booking-dispatcher/core/dispatch"
	"booking-dispatcher/core/intake"
)

// WebhookHandler handles booking-form webhooks from the intake side
type WebhookHandler struct {
	engine *dispatch.Engine
	parser *intake.Parser
}

// NewWebhookHandler creates a new intake webhook handler
func NewWebhookHandler(engine *dispatch.Engine, parser *intake.Parser) *WebhookHandler {
	return &WebhookHandler{
		engine: engine,
		parser: parser,
	}
}

// intakePayload is the loosely-shaped form webhook body. Only the response
// section is interpreted; everything else the form builder sends is ignored.
type intakePayload struct {
	EntryID  json.Number            `json:"entry_id"`
	Response map[string]interface{} `json:"response"`
}

// HandleIntake handles POST /webhook
func (h *WebhookHandler) HandleIntake(w http.ResponseWriter, r *http.Request) {
	var payload intakePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	booking := h.parser.Parse(payload.Response)

	job, err := h.engine.CreateJob(r.Context(), booking.City, booking)
	if errors.Is(err, dispatch.ErrMissingLocation) {
		writeError(w, http.StatusBadRequest, "Location (city) is required")
		return
	}
	if errors.Is(err, dispatch.ErrNoCandidates) {
		writeError(w, http.StatusNotFound, "No providers found for this location")
		return
	}
	if err != nil {
		log.Printf("webhook: create job failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Error processing request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Job request received",
		"job_id":  job.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status": "error",
		"error":  message,
	})
}
