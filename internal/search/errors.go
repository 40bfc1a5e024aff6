package search

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
)

type SearchErrorCause string

const (
	ErrCauseReadFail    SearchErrorCause = "shard read failed"
	ErrCauseEmptyCorpus SearchErrorCause = "no non-empty shards"
)

// SearchError reports a failure reading shard files. It is never returned
// for "no results" — zero matches is a normal, empty Page.
type SearchError struct {
	Message string
	Cause   SearchErrorCause
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search error: %s: %s", e.Cause, e.Message)
}

func (e *SearchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
