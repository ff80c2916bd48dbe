package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"booking-dispatcher/api/rest/handlers"
	"booking-dispatcher/api/rest/routes"
	"booking-dispatcher/config"
	"booking-dispatcher/core/dispatch"
	"booking-dispatcher/core/intake"
	"booking-dispatcher/core/repository"
	"booking-dispatcher/core/retention"
	"booking-dispatcher/providers/awssns"
	"booking-dispatcher/providers/sheets"
	"booking-dispatcher/providers/textmagic"

	"github.com/gorilla/mux"
)

// jobStore is the full store surface the server wires together
type jobStore interface {
	dispatch.Store
	handlers.JobReader
	retention.Store
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Initialize the job store
	var store jobStore
	if cfg.DatabaseURL != "" {
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		store = repository.NewJobRepository(db)
		log.Println("Database connected successfully")
	} else {
		store = repository.NewMemoryStore()
		log.Println("No DATABASE_URL set, using in-memory job store")
	}

	// Initialize the candidate directory
	if cfg.SpreadsheetID == "" {
		log.Println("Warning: SPREADSHEET_ID not set, directory lookups will fail")
	}
	directory := sheets.NewClient(cfg.SpreadsheetID, cfg.SheetsAPIKey)

	// Initialize the notification channel
	var notifier dispatch.Notifier
	switch cfg.SMSProvider {
	case "sns":
		snsClient, err := awssns.NewClient(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize SNS client: %v", err)
		}
		notifier = snsClient
	default:
		if cfg.TextMagicUsername == "" || cfg.TextMagicAPIKey == "" {
			log.Println("Warning: TextMagic credentials not set, sends will fail")
		}
		notifier = textmagic.NewClient(cfg.TextMagicUsername, cfg.TextMagicAPIKey, cfg.TextMagicNumber)
	}

	// Initialize the dispatch engine
	engine := dispatch.NewEngine(store, directory, notifier)

	// Initialize the intake parser
	fieldMap := intake.DefaultFieldMap()
	if cfg.FieldMapPath != "" {
		var err error
		fieldMap, err = intake.LoadFieldMap(cfg.FieldMapPath)
		if err != nil {
			log.Fatalf("Failed to load field map: %v", err)
		}
	}
	parser := intake.NewParser(fieldMap)

	// Start the retention sweeper
	sweeper := retention.NewSweeper(store, cfg.RetentionTTL, cfg.RetentionSchedule)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start retention sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, engine, store, parser)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
