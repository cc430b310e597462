// The extractor is the external extraction process the server spawns per
// OCR job. It runs the full per-file loop over the redacted folder and
// reports progress on stdout, one timestamped line at a time.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taxdocs/internal/config"
	"taxdocs/internal/extract"
	"taxdocs/internal/gemini"
	"taxdocs/internal/port"
	"taxdocs/internal/sheet"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("[%s] fatal error: %v\n", time.Now().Format("15:04:05"), err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer, err := newSheetWriter(ctx, &cfg.Sheets)
	if err != nil {
		return fmt.Errorf("failed to open sheet: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("closing sheet: %v", err)
		}
	}()

	model := gemini.NewClient(&cfg.Gemini)
	engine := extract.NewEngine(
		cfg.Folders.Target,
		model,
		writer,
		cfg.Gemini.MaxRetries,
		time.Duration(cfg.Gemini.RetryDelaySecs)*time.Second,
	)

	return engine.Run(ctx)
}

func newSheetWriter(ctx context.Context, cfg *config.SheetsConfig) (port.SheetWriter, error) {
	switch cfg.Provider {
	case "google":
		return sheet.NewGoogleWriter(ctx, cfg)
	case "excel", "":
		return sheet.NewExcelWriter(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown sheets provider %q", cfg.Provider)
	}
}
