package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taxdocs/internal/config"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health handles GET /health. It reports folder state and whether the
// vision API is configured, without calling any external service.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"folders": gin.H{
			"source": folderInfo(h.cfg.Folders.Source),
			"target": folderInfo(h.cfg.Folders.Target),
		},
		"batch_size": h.cfg.Redaction.BatchSize,
		"gemini": gin.H{
			"configured": h.cfg.Gemini.APIKey != "",
			"model":      h.cfg.Gemini.Model,
		},
		"sheets_provider": h.cfg.Sheets.Provider,
	})
}

func folderInfo(folder string) gin.H {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return gin.H{"path": folder, "exists": false, "pdf_count": 0}
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			count++
		}
	}
	return gin.H{"path": folder, "exists": true, "pdf_count": count}
}
