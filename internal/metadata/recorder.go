package metadata

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (page ID, crawl ID)
*/

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/joblog"
)

// Recorder is the concrete MetadataSink/CrawlFinalizer used by a running job.
// It writes one structured slog line per event and mirrors a short
// human-readable rendering into the job's log ring, so a job's recent
// activity can be read back without grepping process logs.
type Recorder struct {
	jobID  string
	logger *slog.Logger
	ring   *joblog.Ring
}

// NewRecorder builds a Recorder bound to jobID, logging through logger (or
// slog.Default() when nil) and mirroring into ring (optional; a nil ring
// disables the mirror, useful for components that only need process logs).
func NewRecorder(jobID string, logger *slog.Logger, ring *joblog.Ring) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		jobID:  jobID,
		logger: logger.With(slog.String("job_id", jobID)),
		ring:   ring,
	}
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	crawlDepth int,
) {
	evt := FetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		duration:    duration,
		contentType: contentType,
		retryCount:  retryCount,
		crawlDepth:  crawlDepth,
	}

	r.logger.Info("fetch",
		slog.String("url", evt.fetchUrl),
		slog.Int("status", evt.httpStatus),
		slog.Duration("duration", evt.duration),
		slog.String("content_type", evt.contentType),
		slog.Int("retry_count", evt.retryCount),
		slog.Int("depth", evt.crawlDepth),
	)

	r.mirror(fmt.Sprintf(
		"fetch url=%s status=%d duration=%s depth=%d retries=%d",
		evt.fetchUrl, evt.httpStatus, evt.duration, evt.crawlDepth, evt.retryCount,
	))
}

func (r *Recorder) RecordAssetFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
	r.logger.Info("asset_fetch",
		slog.String("url", fetchUrl),
		slog.Int("status", httpStatus),
		slog.Duration("duration", duration),
		slog.Int("retry_count", retryCount),
	)

	r.mirror(fmt.Sprintf(
		"asset_fetch url=%s status=%d duration=%s retries=%d",
		fetchUrl, httpStatus, duration, retryCount,
	))
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	rec := ErrorRecord{
		packageName: packageName,
		action:      action,
		cause:       cause,
		errorString: details,
		observedAt:  observedAt,
		attrs:       attrs,
	}

	args := []any{
		slog.Time("observed_at", rec.observedAt),
		slog.String("package", rec.packageName),
		slog.String("action", rec.action),
		slog.Int("cause", int(rec.cause)),
		slog.String("details", rec.errorString),
	}
	for _, attr := range rec.attrs {
		args = append(args, slog.String(string(attr.Key), attr.Value))
	}

	r.logger.Error("pipeline_error", args...)
	r.mirror(fmt.Sprintf(
		"error package=%s action=%s cause=%d details=%q",
		rec.packageName, rec.action, rec.cause, rec.errorString,
	))
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	rec := ArtifactRecord{paths: path}

	args := []any{
		slog.String("kind", string(kind)),
		slog.String("path", rec.paths),
	}
	for _, attr := range attrs {
		args = append(args, slog.String(string(attr.Key), attr.Value))
	}

	r.logger.Info("artifact", args...)
	r.mirror(fmt.Sprintf("artifact kind=%s path=%s", kind, rec.paths))
}

// RecordFinalCrawlStats is invoked exactly once, after a job reaches a
// terminal state. It never influences scheduling, retries, or termination.
func (r *Recorder) RecordFinalCrawlStats(totalPages, totalErrors, totalAssets int, duration time.Duration) {
	stats := crawlStats{
		totalPages:  totalPages,
		totalErrors: totalErrors,
		totalAssets: totalAssets,
		durationMs:  duration.Milliseconds(),
	}

	r.logger.Info("crawl_finished",
		slog.Int("total_pages", stats.totalPages),
		slog.Int("total_errors", stats.totalErrors),
		slog.Int("total_assets", stats.totalAssets),
		slog.Int64("duration_ms", stats.durationMs),
	)

	r.mirror(fmt.Sprintf(
		"crawl_finished pages=%d errors=%d assets=%d duration_ms=%d",
		stats.totalPages, stats.totalErrors, stats.totalAssets, stats.durationMs,
	))
}

func (r *Recorder) mirror(line string) {
	if r.ring == nil {
		return
	}
	r.ring.Append(fmt.Sprintf("%s %s", time.Now().Format(time.RFC3339), line))
}
