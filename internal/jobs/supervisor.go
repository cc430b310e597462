package jobs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"taxdocs/internal/domain"
)

// logTail bounds how many trailing lines are mirrored onto the Job record.
const logTail = 50

// Supervisor runs the external extraction process for one job, teeing its
// line-oriented output into the Tracker (coarse status) and the LogBroker
// (full-fidelity live feed).
type Supervisor struct {
	tracker *Tracker
	broker  *LogBroker
	command string
}

// NewSupervisor creates a Supervisor that spawns command per extraction job.
func NewSupervisor(tracker *Tracker, broker *LogBroker, command string) *Supervisor {
	return &Supervisor{tracker: tracker, broker: broker, command: command}
}

// Run supervises one extraction job to completion. It blocks for as long
// as the external process runs; callers dispatch it on its own goroutine.
// The job's log queue is always released on exit.
func (s *Supervisor) Run(ctx context.Context, jobID string) {
	s.broker.Open(jobID)
	defer s.broker.Release(jobID)

	_ = s.tracker.Apply(jobID, Update{
		Status:   domain.JobStatusRunning,
		Progress: 10,
		Message:  "starting extraction process",
	})

	lines, err := s.supervise(ctx, jobID)
	output := strings.Join(lines, "\n")

	if err != nil {
		msg := fmt.Sprintf("extraction failed: %v", err)
		s.publishStamped(jobID, msg)
		_ = s.tracker.Apply(jobID, Update{
			Status:    domain.JobStatusFailed,
			Message:   "extraction failed",
			Error:     msg,
			LogOutput: output,
		})
		log.Printf("jobs.Supervisor: job %s: %v", jobID, err)
		return
	}

	s.publishStamped(jobID, "extraction finished successfully")
	_ = s.tracker.Apply(jobID, Update{
		Status:    domain.JobStatusCompleted,
		Progress:  100,
		Message:   "extraction complete",
		LogOutput: output,
		Result:    map[string]interface{}{"output": output, "success": true},
	})
}

// supervise spawns the process and consumes its combined output one line
// at a time, updating progress as lines arrive.
func (s *Supervisor) supervise(ctx context.Context, jobID string) ([]string, error) {
	cmd := exec.CommandContext(ctx, s.command)
	cmd.Env = os.Environ()

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", s.command, err)
	}

	waitCh := make(chan error, 1)
	go func() {
		// The process may run arbitrarily long; there is deliberately no
		// timeout here.
		waitCh <- cmd.Wait()
		_ = pw.Close()
	}()

	var lines []string
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		s.broker.Publish(jobID, line)

		message := "extraction in progress"
		if StatusLine(line) {
			message = TrimTimestamp(line)
		}
		tail := lines
		if len(tail) > logTail {
			tail = tail[len(tail)-logTail:]
		}
		_ = s.tracker.Apply(jobID, Update{
			Status:    domain.JobStatusRunning,
			Progress:  ProgressHint(line, len(lines)),
			Message:   message,
			LogOutput: strings.Join(tail, "\n"),
		})
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return lines, fmt.Errorf("reading process output: %w", err)
	}

	if err := <-waitCh; err != nil {
		return lines, fmt.Errorf("process exited: %w", err)
	}
	return lines, nil
}

func (s *Supervisor) publishStamped(jobID, message string) {
	s.broker.Publish(jobID, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message))
}
