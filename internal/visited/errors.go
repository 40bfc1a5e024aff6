package visited

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/fileutil"
)

type VisitedErrorCause string

const (
	ErrCausePathError VisitedErrorCause = "path error"
	ErrCauseDiskFull  VisitedErrorCause = "disk is full"
	ErrCauseWriteFail VisitedErrorCause = "write failed"
)

type VisitedError struct {
	Message   string
	Retryable bool
	Cause     VisitedErrorCause
}

func (e *VisitedError) Error() string {
	return fmt.Sprintf("visited registry error: %s: %s", e.Cause, e.Message)
}

func (e *VisitedError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// wrapFileError maps a pkg/fileutil error onto the package's own error
// shape, so callers depend only on visited.VisitedError, not on fileutil's
// internals.
func wrapFileError(err failure.ClassifiedError) *VisitedError {
	var fileErr *fileutil.FileError
	cause := ErrCauseWriteFail
	retryable := err.Severity() == failure.SeverityRecoverable
	if ok := asFileError(err, &fileErr); ok {
		switch fileErr.Cause {
		case fileutil.ErrCauseDiskFull:
			cause = ErrCauseDiskFull
		case fileutil.ErrCausePathError:
			cause = ErrCausePathError
		}
	}
	return &VisitedError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
	}
}

func asFileError(err failure.ClassifiedError, target **fileutil.FileError) bool {
	fileErr, ok := err.(*fileutil.FileError)
	if !ok {
		return false
	}
	*target = fileErr
	return true
}
