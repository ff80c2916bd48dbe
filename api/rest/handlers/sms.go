package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"booking-dispatcher/core/dispatch"
)

// SMSHandler handles inbound SMS webhooks from the notification channel
type SMSHandler struct {
	engine *dispatch.Engine
}

// NewSMSHandler creates a new inbound SMS handler
func NewSMSHandler(engine *dispatch.Engine) *SMSHandler {
	return &SMSHandler{engine: engine}
}

// inboundPayload is the TextMagic inbound-message webhook body
type inboundPayload struct {
	Message struct {
		From string `json:"from"`
		Text string `json:"text"`
	} `json:"message"`
}

// HandleInbound handles POST /incoming-sms. The engine absorbs every reply
// anomaly (no job, stale, unrecognized text), so anything past input
// validation answers 200.
func (h *SMSHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	var payload inboundPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "No data received")
		return
	}
	if payload.Message.From == "" || payload.Message.Text == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	outcome, err := h.engine.ApplyReply(r.Context(), payload.Message.From, payload.Message.Text)
	if err != nil {
		log.Printf("sms: apply reply from %s failed: %v", payload.Message.From, err)
		writeError(w, http.StatusInternalServerError, "Error handling reply")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"outcome": outcome,
	})
}
