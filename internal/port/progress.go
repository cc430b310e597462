package port

import "taxdocs/internal/domain"

// ProgressFunc receives status updates from a long-running operation.
// Implementations must tolerate frequent calls; percent is 0-100 and
// non-decreasing within one run.
type ProgressFunc func(status domain.JobStatus, percent int, message string)
