package handler_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/config"
	"taxdocs/internal/domain"
	"taxdocs/internal/handler"
	"taxdocs/internal/jobs"
	"taxdocs/internal/redact"
	"taxdocs/internal/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	source  string
	target  string
	tracker *jobs.Tracker
	broker  *jobs.LogBroker
	router  *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	source := t.TempDir()
	target := t.TempDir()

	tracker := jobs.NewTracker()
	broker := jobs.NewLogBroker()
	engine := redact.NewEngine(source, target, 50, nil)
	supervisor := jobs.NewSupervisor(tracker, broker, "/bin/true")

	cfg := &config.Config{}
	cfg.Folders = config.FolderConfig{Source: source, Target: target}
	cfg.Sheets.Provider = "excel"

	r := router.Setup(
		handler.NewRedactionHandler(engine, tracker, source, target),
		handler.NewExtractionHandler(target, tracker, supervisor),
		handler.NewJobHandler(tracker, broker),
		handler.NewInfoHandler(source, target),
		handler.NewDownloadHandler(target),
		handler.NewHealthHandler(cfg),
	)
	return &env{source: source, target: target, tracker: tracker, broker: broker, router: r}
}

func (e *env) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func writePDF(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644))
}

func TestScanListsSourceFiles(t *testing.T) {
	e := newEnv(t)
	writePDF(t, e.source, "2.pdf")
	writePDF(t, e.source, "1.pdf")

	rec := e.do(t, http.MethodGet, "/scan-pdfs")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["count"])
	assert.Equal(t, e.source, data["folder"])
	files := data["files"].([]any)
	first := files[0].(map[string]any)
	assert.Equal(t, "1.pdf", first["filename"])
}

func TestScanMissingFolder(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.RemoveAll(e.source))

	rec := e.do(t, http.MethodGet, "/scan-pdfs")
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "FOLDER_NOT_FOUND", resp.Error.Code)
}

func TestMaskPDFsReturnsJobAndFailsOnEmptySource(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/mask-pdfs")
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := decode(t, rec)
	id := resp.Data.(map[string]any)["job_id"].(string)
	require.NotEmpty(t, id)

	job := waitTerminal(t, e.tracker, id)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Contains(t, job.Error, "no PDF files")
}

func TestJobStatusUnknownID(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/job-status/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "JOB_NOT_FOUND", decode(t, rec).Error.Code)
}

func TestJobStatusReportsProgress(t *testing.T) {
	e := newEnv(t)
	id := e.tracker.Create(domain.JobKindExtraction, "queued")
	require.NoError(t, e.tracker.Apply(id, jobs.Update{
		Status:   domain.JobStatusRunning,
		Progress: 42,
		Message:  "analyzing",
	}))

	rec := e.do(t, http.MethodGet, "/job-status/"+id)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, "running", data["status"])
	assert.Equal(t, float64(42), data["progress"])
	assert.Equal(t, "analyzing", data["message"])
}

func TestRunOCRRequiresRedactedFiles(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/run-ocr")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NO_PDF_FILES", decode(t, rec).Error.Code)
}

func TestRunOCRStartsJob(t *testing.T) {
	e := newEnv(t)
	writePDF(t, e.target, "1.pdf")

	rec := e.do(t, http.MethodPost, "/run-ocr")
	require.Equal(t, http.StatusAccepted, rec.Code)

	id := decode(t, rec).Data.(map[string]any)["job_id"].(string)
	job := waitTerminal(t, e.tracker, id)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
}

func TestStreamLogsReplaysTailForFinishedJob(t *testing.T) {
	e := newEnv(t)
	id := e.tracker.Create(domain.JobKindExtraction, "queued")
	require.NoError(t, e.tracker.Apply(id, jobs.Update{
		Status:    domain.JobStatusFailed,
		Message:   "extraction failed",
		Error:     "process exited",
		LogOutput: "[12:00:01] processing started\n[12:00:05] failed: boom",
	}))

	rec := e.do(t, http.MethodGet, "/stream-logs/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.Bytes())
	require.GreaterOrEqual(t, len(events), 4)
	assert.Equal(t, "log", events[0].Type)
	assert.Contains(t, events[0].Message, "processing started")
	assert.Equal(t, "log", events[1].Type)
	assert.Equal(t, "status", events[2].Type)
	assert.Equal(t, domain.JobStatusFailed, events[2].Status)
	assert.Equal(t, "close", events[len(events)-1].Type)
}

func TestStreamLogsUnknownJob(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/stream-logs/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractInfoFromMapping(t *testing.T) {
	e := newEnv(t)
	mapping := []domain.FileMapping{
		{Number: 1, OriginalName: "kim2024.pdf", MaskedName: "1.pdf"},
	}
	data, err := json.Marshal(mapping)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(e.target, redact.MappingFilename), data, 0o644))

	rec := e.do(t, http.MethodPost, "/extract-info")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, float64(1), body["count"])
	entry := body["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "kim2", entry["code"])
	assert.Equal(t, float64(1), entry["order"])
}

func TestDownloadMaskedZip(t *testing.T) {
	e := newEnv(t)
	writePDF(t, e.target, "1.pdf")
	writePDF(t, e.target, "2.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(e.target, redact.MappingFilename), []byte("[]"), 0o644))

	rec := e.do(t, http.MethodGet, "/download-masked")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "masked_pdfs_")

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["1.pdf"])
	assert.True(t, names["2.pdf"])
	assert.True(t, names[redact.MappingFilename])
}

func TestDownloadMaskedEmpty(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/download-masked")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOTHING_TO_DOWNLOAD", decode(t, rec).Error.Code)
}

func TestHealthReportsFolders(t *testing.T) {
	e := newEnv(t)
	writePDF(t, e.source, "1.pdf")

	rec := e.do(t, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	folders := body["folders"].(map[string]any)
	src := folders["source"].(map[string]any)
	assert.Equal(t, true, src["exists"])
	assert.Equal(t, float64(1), src["pdf_count"])

	gem := body["gemini"].(map[string]any)
	assert.Equal(t, false, gem["configured"])
}

func waitTerminal(t *testing.T, tracker *jobs.Tracker, id string) *domain.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := tracker.Get(id)
		require.NoError(t, err)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return nil
}

func parseSSE(t *testing.T, body []byte) []jobs.StreamEvent {
	t.Helper()
	var events []jobs.StreamEvent
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev jobs.StreamEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}
