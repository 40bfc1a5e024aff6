package frontier

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
)

type FrontierErrorCause string

const (
	ErrCausePathError FrontierErrorCause = "path error"
	ErrCauseDiskFull  FrontierErrorCause = "disk is full"
	ErrCauseWriteFail FrontierErrorCause = "write failed"
)

// FrontierError reports a failure mirroring the in-memory queue to disk.
// It never reflects a push/pop decision: Push's own Full/AlreadyVisited/
// BudgetExceeded outcomes are reported as PushResult values, not errors.
type FrontierError struct {
	Message   string
	Retryable bool
	Cause     FrontierErrorCause
	Path      string
}

func (e *FrontierError) Error() string {
	return fmt.Sprintf("frontier error: %s: %s", e.Cause, e.Message)
}

func (e *FrontierError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
