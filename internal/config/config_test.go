package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Port)
	assert.Equal(t, "pdfs", cfg.Folders.Source)
	assert.Equal(t, "masked-pdfs", cfg.Folders.Target)
	assert.Equal(t, 50, cfg.Redaction.BatchSize)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 3, cfg.Gemini.MaxRetries)
	assert.Equal(t, 5, cfg.Gemini.RetryDelaySecs)
	assert.Equal(t, "excel", cfg.Sheets.Provider)
	assert.Equal(t, "pdf-ocr.xlsx", cfg.Sheets.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TAXDOCS_FOLDERS_SOURCE", "/data/in")
	t.Setenv("TAXDOCS_REDACTION_BATCH_SIZE", "10")
	t.Setenv("TAXDOCS_SHEETS_PROVIDER", "google")
	t.Setenv("TAXDOCS_GEMINI_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.Folders.Source)
	assert.Equal(t, 10, cfg.Redaction.BatchSize)
	assert.Equal(t, "google", cfg.Sheets.Provider)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
}

func TestLoadPaaSPortFallback(t *testing.T) {
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestLoadExplicitPortWinsOverPaaS(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TAXDOCS_SERVER_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestParsedAreasDefault(t *testing.T) {
	r := RedactionConfig{}
	areas, err := r.ParsedAreas()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRedactionAreas, areas)
}

func TestParsedAreasCustom(t *testing.T) {
	r := RedactionConfig{Areas: `[{"x1":1,"y1":2,"x2":3,"y2":4}]`}
	areas, err := r.ParsedAreas()
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, 4.0, areas[0].Y2)
}

func TestParsedAreasMalformed(t *testing.T) {
	r := RedactionConfig{Areas: "{nope"}
	_, err := r.ParsedAreas()
	require.Error(t, err)
}
