package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taxdocs/internal/domain"
	"taxdocs/internal/jobs"
)

// JobHandler exposes job state polling and the live log stream.
type JobHandler struct {
	tracker *jobs.Tracker
	broker  *jobs.LogBroker
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(tracker *jobs.Tracker, broker *jobs.LogBroker) *JobHandler {
	return &JobHandler{tracker: tracker, broker: broker}
}

// Status handles GET /job-status/:id
func (h *JobHandler) Status(c *gin.Context) {
	job, err := h.tracker.Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, job)
}

// Stream handles GET /stream-logs/:id as server-sent events. The retained
// log tail is replayed first so late subscribers catch up, then live lines
// follow until the job finishes or the client disconnects.
func (h *JobHandler) Stream(c *gin.Context) {
	id := c.Param("id")
	job, err := h.tracker.Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	send := func(ev jobs.StreamEvent) bool {
		if c.Request.Context().Err() != nil {
			return false
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return false
		}
		c.Writer.Flush()
		return true
	}

	if job.LogOutput != "" {
		for _, line := range strings.Split(job.LogOutput, "\n") {
			if line == "" {
				continue
			}
			if !send(jobs.StreamEvent{Type: "log", Message: line}) {
				return
			}
		}
	}

	h.broker.Stream(id, func() (domain.JobStatus, bool) {
		return h.tracker.Status(id)
	}, send)
}
