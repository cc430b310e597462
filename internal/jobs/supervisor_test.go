package jobs

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/domain"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not available")
	}
	path := filepath.Join(t.TempDir(), "extractor.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestSupervisorCompletesOnZeroExit(t *testing.T) {
	tracker := NewTracker()
	broker := NewLogBroker()
	script := writeScript(t, `
echo "[10:00:00] processing started"
echo "[10:00:01] analyzing"
echo "[10:00:02] all processing complete"
`)

	id := tracker.Create(domain.JobKindExtraction, "pending")
	NewSupervisor(tracker, broker, script).Run(context.Background(), id)

	job, err := tracker.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Contains(t, job.LogOutput, "all processing complete")

	result, ok := job.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, result["success"])

	// Queue released on exit.
	assert.Zero(t, broker.Len(id))
}

func TestSupervisorFailsOnNonZeroExit(t *testing.T) {
	tracker := NewTracker()
	broker := NewLogBroker()
	script := writeScript(t, `
echo "[10:00:00] processing started"
echo "[10:00:01] request failed" >&2
exit 3
`)

	id := tracker.Create(domain.JobKindExtraction, "pending")
	NewSupervisor(tracker, broker, script).Run(context.Background(), id)

	job, err := tracker.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.NotEmpty(t, job.Error)
	// Output produced before the failure is retained for diagnosis.
	assert.Contains(t, job.LogOutput, "processing started")
	assert.Contains(t, job.LogOutput, "request failed")
}

func TestSupervisorFailsWhenCommandMissing(t *testing.T) {
	tracker := NewTracker()
	broker := NewLogBroker()

	id := tracker.Create(domain.JobKindExtraction, "pending")
	NewSupervisor(tracker, broker, filepath.Join(t.TempDir(), "missing")).Run(context.Background(), id)

	job, err := tracker.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
}
