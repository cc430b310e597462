package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"taxdocs/internal/domain"
	"taxdocs/internal/jobs"
	"taxdocs/internal/redact"
)

// RedactionHandler handles source folder scanning and batch redaction jobs.
type RedactionHandler struct {
	engine       *redact.Engine
	tracker      *jobs.Tracker
	sourceFolder string
	targetFolder string
}

// NewRedactionHandler creates a new RedactionHandler.
func NewRedactionHandler(engine *redact.Engine, tracker *jobs.Tracker, sourceFolder, targetFolder string) *RedactionHandler {
	return &RedactionHandler{
		engine:       engine,
		tracker:      tracker,
		sourceFolder: sourceFolder,
		targetFolder: targetFolder,
	}
}

// Scan handles GET /scan-pdfs
func (h *RedactionHandler) Scan(c *gin.Context) {
	result, err := h.engine.Scan()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"files":      result.Files,
		"count":      result.Count,
		"total_size": result.TotalSizeBytes,
		"folder":     h.sourceFolder,
	})
}

// Start handles POST /mask-pdfs. The redaction runs on its own goroutine;
// the response only carries the job id to poll.
func (h *RedactionHandler) Start(c *gin.Context) {
	id := h.tracker.Create(domain.JobKindRedaction, "redaction queued")

	go func() {
		onProgress := func(status domain.JobStatus, percent int, message string) {
			if status.Terminal() {
				// the final state is applied below, together with the result
				return
			}
			_ = h.tracker.Apply(id, jobs.Update{Status: status, Progress: percent, Message: message})
		}

		result, err := h.engine.RedactAll(onProgress)
		if err != nil {
			log.Printf("redaction job %s failed: %v", id, err)
			_ = h.tracker.Apply(id, jobs.Update{
				Status:  domain.JobStatusFailed,
				Message: "redaction failed",
				Error:   err.Error(),
			})
			return
		}
		_ = h.tracker.Apply(id, jobs.Update{
			Status:   domain.JobStatusCompleted,
			Progress: 100,
			Message:  "redaction complete",
			Result:   result,
		})
	}()

	RespondAccepted(c, gin.H{
		"job_id":        id,
		"message":       "redaction started",
		"source_folder": h.sourceFolder,
		"target_folder": h.targetFolder,
	})
}
