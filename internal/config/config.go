package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"taxdocs/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Folders   FolderConfig
	Redaction RedactionConfig
	Extractor ExtractorConfig
	Gemini    GeminiConfig
	Sheets    SheetsConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// FolderConfig holds the source and target folder paths.
type FolderConfig struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// RedactionConfig holds batch redaction settings. Areas is a JSON array of
// {x1,y1,x2,y2} rectangles; when empty the built-in default regions apply.
type RedactionConfig struct {
	BatchSize int    `mapstructure:"batch_size"`
	Areas     string `mapstructure:"areas"`
}

// ParsedAreas returns the configured redaction areas, falling back to the
// default name/date-of-birth/registration-number regions.
func (r *RedactionConfig) ParsedAreas() ([]domain.RedactionArea, error) {
	if strings.TrimSpace(r.Areas) == "" {
		return domain.DefaultRedactionAreas, nil
	}
	var areas []domain.RedactionArea
	if err := json.Unmarshal([]byte(r.Areas), &areas); err != nil {
		return nil, fmt.Errorf("parsing redaction areas: %w", err)
	}
	if len(areas) == 0 {
		return domain.DefaultRedactionAreas, nil
	}
	return areas, nil
}

// ExtractorConfig holds settings for the external extraction process.
type ExtractorConfig struct {
	Command string `mapstructure:"command"`
}

// GeminiConfig holds Gemini vision API settings.
type GeminiConfig struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryDelaySecs    int    `mapstructure:"retry_delay_secs"`
	TimeoutSecs       int    `mapstructure:"timeout_secs"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// SheetsConfig holds spreadsheet sink settings. Provider is "excel" for a
// local .xlsx workbook or "google" for a Google Sheets spreadsheet.
type SheetsConfig struct {
	Provider        string `mapstructure:"provider"`
	Path            string `mapstructure:"path"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the TAXDOCS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TAXDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Folder defaults
	v.SetDefault("folders.source", "pdfs")
	v.SetDefault("folders.target", "masked-pdfs")

	// Redaction defaults
	v.SetDefault("redaction.batch_size", 50)
	v.SetDefault("redaction.areas", "")

	// Extractor defaults
	v.SetDefault("extractor.command", "./extractor")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.max_retries", 3)
	v.SetDefault("gemini.retry_delay_secs", 5)
	v.SetDefault("gemini.timeout_secs", 120)
	v.SetDefault("gemini.requests_per_minute", 30)

	// Sheets defaults
	v.SetDefault("sheets.provider", "excel")
	v.SetDefault("sheets.path", "pdf-ocr.xlsx")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "TAXDOCS_SERVER_PORT",
		"server.read_timeout":        "TAXDOCS_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "TAXDOCS_SERVER_WRITE_TIMEOUT",
		"server.environment":         "TAXDOCS_SERVER_ENVIRONMENT",
		"folders.source":             "TAXDOCS_FOLDERS_SOURCE",
		"folders.target":             "TAXDOCS_FOLDERS_TARGET",
		"redaction.batch_size":       "TAXDOCS_REDACTION_BATCH_SIZE",
		"redaction.areas":            "TAXDOCS_REDACTION_AREAS",
		"extractor.command":          "TAXDOCS_EXTRACTOR_COMMAND",
		"gemini.api_key":             "TAXDOCS_GEMINI_API_KEY",
		"gemini.model":               "TAXDOCS_GEMINI_MODEL",
		"gemini.max_retries":         "TAXDOCS_GEMINI_MAX_RETRIES",
		"gemini.retry_delay_secs":    "TAXDOCS_GEMINI_RETRY_DELAY_SECS",
		"gemini.timeout_secs":        "TAXDOCS_GEMINI_TIMEOUT_SECS",
		"gemini.requests_per_minute": "TAXDOCS_GEMINI_REQUESTS_PER_MINUTE",
		"sheets.provider":            "TAXDOCS_SHEETS_PROVIDER",
		"sheets.path":                "TAXDOCS_SHEETS_PATH",
		"sheets.spreadsheet_id":      "TAXDOCS_SHEETS_SPREADSHEET_ID",
		"sheets.credentials_file":    "TAXDOCS_SHEETS_CREDENTIALS_FILE",
		"log.level":                  "TAXDOCS_LOG_LEVEL",
		"log.format":                 "TAXDOCS_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TAXDOCS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TAXDOCS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Folders = FolderConfig{
		Source: v.GetString("folders.source"),
		Target: v.GetString("folders.target"),
	}
	cfg.Redaction = RedactionConfig{
		BatchSize: v.GetInt("redaction.batch_size"),
		Areas:     v.GetString("redaction.areas"),
	}
	cfg.Extractor = ExtractorConfig{
		Command: v.GetString("extractor.command"),
	}
	cfg.Gemini = GeminiConfig{
		APIKey:            v.GetString("gemini.api_key"),
		Model:             v.GetString("gemini.model"),
		MaxRetries:        v.GetInt("gemini.max_retries"),
		RetryDelaySecs:    v.GetInt("gemini.retry_delay_secs"),
		TimeoutSecs:       v.GetInt("gemini.timeout_secs"),
		RequestsPerMinute: v.GetInt("gemini.requests_per_minute"),
	}
	cfg.Sheets = SheetsConfig{
		Provider:        v.GetString("sheets.provider"),
		Path:            v.GetString("sheets.path"),
		SpreadsheetID:   v.GetString("sheets.spreadsheet_id"),
		CredentialsFile: v.GetString("sheets.credentials_file"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
