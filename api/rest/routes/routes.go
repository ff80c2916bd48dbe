package routes

import (
	"booking-dispatcher/api/rest/handlers"
	"booking-dispatcher/core/dispatch"
	"booking-dispatcher/core/intake"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, engine *dispatch.Engine, store handlers.JobReader, parser *intake.Parser) {
	webhookHandler := handlers.NewWebhookHandler(engine, parser)
	smsHandler := handlers.NewSMSHandler(engine)
	jobHandler := handlers.NewJobHandler(store)

	// Inbound webhook endpoints
	r.HandleFunc("/webhook", webhookHandler.HandleIntake).Methods("POST")
	r.HandleFunc("/incoming-sms", smsHandler.HandleInbound).Methods("POST")

	// Read-only inspection endpoints
	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}/events", jobHandler.GetJobEvents).Methods("GET")
	api.HandleFunc("/stats", jobHandler.GetStats).Methods("GET")
}
