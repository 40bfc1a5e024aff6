package job

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
)

// IllegalTransitionError is returned by Pause/Resume/Stop/ResumeFromFiles
// when the requested transition is not legal from the job's current state.
// internal/httpapi maps this to a 409 response.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// PersistenceError wraps an underlying disk failure (frontier mirror,
// visited mark, index append, or status-file write) surfaced by the job
// runtime. Per spec.md §7, any such failure transitions the job to Stopped
// rather than killing the process.
type PersistenceError struct {
	Message string
	Cause   failure.ClassifiedError
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("job persistence error: %s: %v", e.Message, e.Cause)
}

func (e *PersistenceError) Severity() failure.Severity {
	return failure.SeverityFatal
}
