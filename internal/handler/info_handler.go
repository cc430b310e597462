package handler

import (
	"github.com/gin-gonic/gin"

	"taxdocs/internal/reconcile"
)

// InfoHandler serves the de-identification entries that let operators match
// extracted rows back to source files.
type InfoHandler struct {
	sourceFolder string
	targetFolder string
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(sourceFolder, targetFolder string) *InfoHandler {
	return &InfoHandler{sourceFolder: sourceFolder, targetFolder: targetFolder}
}

// PersonalInfo handles POST /extract-info
func (h *InfoHandler) PersonalInfo(c *gin.Context) {
	entries, err := reconcile.PersonalInfo(h.sourceFolder, h.targetFolder)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
