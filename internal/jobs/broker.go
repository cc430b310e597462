package jobs

import (
	"sync"
	"time"

	"taxdocs/internal/domain"
)

const (
	// queueCapacity bounds the per-job log queue. Slow subscribers lose the
	// oldest lines rather than growing memory.
	queueCapacity = 1000

	defaultPollInterval  = 500 * time.Millisecond
	defaultMaxEmptyPolls = 300
)

// StreamEvent is one server-push event on a job's live log feed.
type StreamEvent struct {
	Type    string           `json:"type"` // log | status | error | close
	Message string           `json:"message,omitempty"`
	Status  domain.JobStatus `json:"status,omitempty"`
}

// LogBroker fans out the line-oriented output of running jobs to
// subscribers through bounded per-job queues. The feed is best-effort and
// possibly lossy; the authoritative trailing log lives on the Job record.
type LogBroker struct {
	mu     sync.Mutex
	queues map[string]chan string

	pollInterval  time.Duration
	maxEmptyPolls int
}

// NewLogBroker creates a LogBroker.
func NewLogBroker() *LogBroker {
	return &LogBroker{
		queues:        make(map[string]chan string),
		pollInterval:  defaultPollInterval,
		maxEmptyPolls: defaultMaxEmptyPolls,
	}
}

// Open creates the job's queue. Called by the supervising task when the
// job's output-producing process starts.
func (b *LogBroker) Open(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[jobID] = make(chan string, queueCapacity)
}

// Release tears down the job's queue. Lines still unread stay readable by
// subscribers already holding the channel.
func (b *LogBroker) Release(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.queues, jobID)
}

// Publish enqueues a line for the job, evicting the oldest entry when the
// queue is full. No-op when the job has no active queue.
func (b *LogBroker) Publish(jobID, line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[jobID]
	if !ok {
		return
	}
	select {
	case q <- line:
	default:
		// Full: drop the oldest, then retry once. A second failure means
		// the queue went away concurrently; the line is dropped.
		select {
		case <-q:
		default:
		}
		select {
		case q <- line:
		default:
		}
	}
}

// Len reports the number of buffered lines for a job, for tests and
// diagnostics.
func (b *LogBroker) Len(jobID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[jobID]
	if !ok {
		return 0
	}
	return len(q)
}

func (b *LogBroker) queue(jobID string) (chan string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[jobID]
	return q, ok
}

// Stream delivers the job's live log feed. status reports the job's
// tracked status; send pushes one event to the subscriber and returns
// false when the subscriber is gone. Stream blocks until the job reaches a
// terminal state with no active queue, the inactivity ceiling is hit, or
// send fails; it always finishes with a close event.
func (b *LogBroker) Stream(jobID string, status func() (domain.JobStatus, bool), send func(StreamEvent) bool) {
	defer send(StreamEvent{Type: "close"})

	emptyPolls := 0
	for emptyPolls < b.maxEmptyPolls {
		q, ok := b.queue(jobID)
		if !ok {
			// No active queue: if the job already finished, report its
			// terminal state and end; otherwise keep waiting for it to start.
			if st, known := status(); known && st.Terminal() {
				send(StreamEvent{Type: "status", Status: st})
				return
			}
			emptyPolls++
			time.Sleep(b.pollInterval)
			continue
		}

		select {
		case line, open := <-q:
			if !open {
				return
			}
			if !send(StreamEvent{Type: "log", Message: line}) {
				return
			}
			emptyPolls = 0
		case <-time.After(b.pollInterval):
			emptyPolls++
		}
	}
}
