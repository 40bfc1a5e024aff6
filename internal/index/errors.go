package index

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
)

type IndexErrorCause string

const (
	ErrCausePathError IndexErrorCause = "path error"
	ErrCauseDiskFull  IndexErrorCause = "disk is full"
	ErrCauseWriteFail IndexErrorCause = "write failed"
)

// IndexError reports a failure appending postings to a shard file. The
// runtime maps a non-retryable IndexError to spec.md §7's PersistenceError,
// transitioning the owning job to Stopped.
type IndexError struct {
	Message   string
	Retryable bool
	Cause     IndexErrorCause
	Shard     string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index error: %s: %s (shard=%s)", e.Cause, e.Message, e.Shard)
}

func (e *IndexError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func wrapFileError(shard string, err failure.ClassifiedError) *IndexError {
	return &IndexError{
		Message:   err.Error(),
		Retryable: err.Severity() == failure.SeverityRecoverable,
		Cause:     ErrCauseWriteFail,
		Shard:     shard,
	}
}
