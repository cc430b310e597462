package handler

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taxdocs/internal/domain"
	"taxdocs/internal/redact"
)

// DownloadHandler serves the redacted outputs as a single zip archive.
type DownloadHandler struct {
	targetFolder string
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(targetFolder string) *DownloadHandler {
	return &DownloadHandler{targetFolder: targetFolder}
}

// Download handles GET /download-masked. The archive holds every redacted
// PDF plus the file mapping artifact, streamed directly to the client.
func (h *DownloadHandler) Download(c *gin.Context) {
	files, err := h.listOutputs()
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	name := fmt.Sprintf("masked_pdfs_%s.zip", time.Now().Format("20060102_150405"))
	c.Writer.Header().Set("Content-Type", "application/zip")
	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Writer.WriteHeader(http.StatusOK)

	zw := zip.NewWriter(c.Writer)
	defer func() { _ = zw.Close() }()

	for _, file := range files {
		if err := h.addFile(zw, file); err != nil {
			// headers are already sent; all we can do is cut the stream
			return
		}
	}
}

// listOutputs returns the filenames to archive: the redacted PDFs and, when
// present, the mapping artifact.
func (h *DownloadHandler) listOutputs() ([]string, error) {
	entries, err := os.ReadDir(h.targetFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNothingToDownload, h.targetFolder)
		}
		return nil, fmt.Errorf("reading target folder: %w", err)
	}

	var files []string
	hasMapping := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch {
		case strings.EqualFold(filepath.Ext(entry.Name()), ".pdf"):
			files = append(files, entry.Name())
		case entry.Name() == redact.MappingFilename:
			hasMapping = true
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNothingToDownload, h.targetFolder)
	}
	if hasMapping {
		files = append(files, redact.MappingFilename)
	}
	return files, nil
}

func (h *DownloadHandler) addFile(zw *zip.Writer, name string) error {
	f, err := os.Open(filepath.Join(h.targetFolder, name))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
