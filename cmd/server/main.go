package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"taxdocs/internal/config"
	"taxdocs/internal/handler"
	"taxdocs/internal/jobs"
	"taxdocs/internal/redact"
	"taxdocs/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	areas, err := cfg.Redaction.ParsedAreas()
	if err != nil {
		return fmt.Errorf("failed to parse redaction areas: %w", err)
	}

	// Job infrastructure
	tracker := jobs.NewTracker()
	broker := jobs.NewLogBroker()
	supervisor := jobs.NewSupervisor(tracker, broker, cfg.Extractor.Command)

	// Redaction engine
	engine := redact.NewEngine(cfg.Folders.Source, cfg.Folders.Target, cfg.Redaction.BatchSize, areas)

	// Initialize handlers
	redactionH := handler.NewRedactionHandler(engine, tracker, cfg.Folders.Source, cfg.Folders.Target)
	extractionH := handler.NewExtractionHandler(cfg.Folders.Target, tracker, supervisor)
	jobH := handler.NewJobHandler(tracker, broker)
	infoH := handler.NewInfoHandler(cfg.Folders.Source, cfg.Folders.Target)
	downloadH := handler.NewDownloadHandler(cfg.Folders.Target)
	healthH := handler.NewHealthHandler(cfg)

	// Setup router
	r := router.Setup(redactionH, extractionH, jobH, infoH, downloadH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
