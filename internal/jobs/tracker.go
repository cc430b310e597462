// Package jobs tracks asynchronous work: in-memory job records, the live
// log-stream broker and the external extraction process supervisor.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"taxdocs/internal/domain"
)

// Update carries the mutable job fields for one Tracker.Update call. All
// fields replace the stored values; Result is only written when non-nil.
type Update struct {
	Status    domain.JobStatus
	Progress  int
	Message   string
	Error     string
	LogOutput string
	Result    interface{}
}

// Tracker is the process-wide job registry. One coarse lock guards all
// reads and writes; records are never deleted and vanish on restart.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]*domain.Job)}
}

// Create inserts a pending job and returns its id. The caller is expected
// to start the actual work on its own goroutine.
func (t *Tracker) Create(kind domain.JobKind, message string) string {
	id := uuid.New().String()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[id] = &domain.Job{
		ID:        id,
		Kind:      kind,
		Status:    domain.JobStatusPending,
		Message:   message,
		Timestamp: time.Now(),
	}
	return id
}

// Apply updates a job record. Terminal states are sticky: updates against a
// completed or failed job are dropped. Progress never decreases while a job
// is running.
func (t *Tracker) Apply(id string, u Update) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.Status.Terminal() {
		return domain.ErrJobAlreadyDone
	}

	if u.Status == domain.JobStatusRunning && u.Progress < job.Progress {
		u.Progress = job.Progress
	}

	job.Status = u.Status
	job.Progress = u.Progress
	job.Message = u.Message
	job.Error = u.Error
	job.LogOutput = u.LogOutput
	if u.Result != nil {
		job.Result = u.Result
	}
	job.Timestamp = time.Now()
	return nil
}

// Get returns a copy of the job record.
func (t *Tracker) Get(id string) (*domain.Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

// Status returns the job's current status, or false for an unknown id.
func (t *Tracker) Status(id string) (domain.JobStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return "", false
	}
	return job.Status, true
}
