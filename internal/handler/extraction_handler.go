package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"taxdocs/internal/domain"
	"taxdocs/internal/jobs"
)

// ExtractionHandler starts OCR extraction jobs over the redacted folder.
type ExtractionHandler struct {
	targetFolder string
	tracker      *jobs.Tracker
	supervisor   *jobs.Supervisor
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(targetFolder string, tracker *jobs.Tracker, supervisor *jobs.Supervisor) *ExtractionHandler {
	return &ExtractionHandler{targetFolder: targetFolder, tracker: tracker, supervisor: supervisor}
}

// Start handles POST /run-ocr. The extraction process only sees redacted
// files, so the target folder must already hold output from a redaction
// run.
func (h *ExtractionHandler) Start(c *gin.Context) {
	count, err := h.countTargetPDFs()
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	id := h.tracker.Create(domain.JobKindExtraction, fmt.Sprintf("extraction queued for %d files", count))
	go h.supervisor.Run(context.Background(), id)

	RespondAccepted(c, gin.H{
		"job_id":     id,
		"message":    fmt.Sprintf("extraction started for %d files", count),
		"file_count": count,
	})
}

func (h *ExtractionHandler) countTargetPDFs() (int, error) {
	entries, err := os.ReadDir(h.targetFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, h.targetFolder)
		}
		return 0, fmt.Errorf("reading target folder: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			count++
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrNoPDFFiles, h.targetFolder)
	}
	return count, nil
}
