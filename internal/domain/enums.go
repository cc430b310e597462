package domain

// JobStatus represents the lifecycle of an asynchronous job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final. Terminal states are sticky:
// a job never transitions out of completed or failed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobKind distinguishes the two kinds of background work.
type JobKind string

const (
	JobKindRedaction  JobKind = "redaction"
	JobKindExtraction JobKind = "extraction"
)
