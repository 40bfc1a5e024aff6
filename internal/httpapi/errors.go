package httpapi

import (
	"errors"
	"net/http"

	"github.com/rohmanhakim/docs-crawler/internal/config"
	"github.com/rohmanhakim/docs-crawler/internal/job"
	"github.com/rohmanhakim/docs-crawler/internal/registry"
)

// errorResponse is the uniform shape of every 4xx/5xx body: {"error": "..."}.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the error kinds of spec.md §7 onto HTTP status codes. An
// error that matches none of them (should not happen given the internal
// contract) is treated as an opaque 500.
func statusFor(err error) int {
	var invalidTransition *job.IllegalTransitionError
	var notFound *registry.NotFoundError
	var fatal *registry.FatalError

	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalidTransition):
		return http.StatusConflict
	case errors.As(err, &fatal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
