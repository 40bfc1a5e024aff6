package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get/Pause/Resume/Stop/ResumeFromFiles for an
// unknown job id. internal/httpapi maps this to 404.
var ErrNotFound = errors.New("job not found")

// NotFoundError names the id that was missing, wrapping ErrNotFound so
// callers can still errors.Is(err, registry.ErrNotFound).
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// FatalError signals registry corruption at startup (spec.md §7's Fatal
// kind): the on-disk job-id namespace cannot be trusted, so the process
// must abort rather than serve traffic against a partially-loaded registry.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("registry fatal error: %s", e.Message)
}
