package htmlextract

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseMalformed ExtractionErrorCause = "html parser rejected input"
	ErrCausePanic     ExtractionErrorCause = "recovered from parser panic"
)

// ExtractionError is only ever produced by the malformed-input and
// panic-recovery paths: a tolerant HTML parser is not expected to error on
// anything short of a genuinely broken byte stream, so this exists purely to
// satisfy the "extraction never throws" invariant further up the pipeline.
type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s", e.Cause)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseMalformed, ErrCausePanic:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
