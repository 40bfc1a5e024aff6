package metadata

import "time"

/*
MetadataSink is the single seam every pipeline stage reports observability
events through. It is never consulted for control flow: a stage decides
whether to retry, continue, or abort entirely on its own classified error,
then separately tells the sink what happened.
*/
type MetadataSink interface {
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
		crawlDepth int,
	)
	RecordAssetFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		retryCount int,
	)
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// CrawlFinalizer records the terminal, derived summary of a completed job.
// It is invoked exactly once, after the job has reached a terminal state.
type CrawlFinalizer interface {
	RecordFinalCrawlStats(totalPages, totalErrors, totalAssets int, duration time.Duration)
}

// ArtifactKind classifies what RecordArtifact persisted.
type ArtifactKind string

const (
	ArtifactMarkdown    ArtifactKind = "markdown"
	ArtifactAsset       ArtifactKind = "asset"
	ArtifactIndex       ArtifactKind = "index"
	ArtifactExcerpt     ArtifactKind = "excerpt"
	ArtifactFingerprint ArtifactKind = "fingerprint"
)
