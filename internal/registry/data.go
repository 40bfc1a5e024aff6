// Package registry implements the Job Registry (C6): a thread-safe map of
// job-id to job.Job runtime handle, job-id generation, and reconciliation
// of on-disk status files with live runtimes at process start. It is the
// only component that constructs a job.Job — every other component reaches
// a job through the Registry.
package registry

import "github.com/rohmanhakim/docs-crawler/internal/job"

// Stats is the GET /crawler/stats payload: process-wide counters spanning
// every job the Registry has ever created, live or not.
type Stats struct {
	TotalVisitedURLs     int `json:"total_visited_urls"`
	TotalWordsInDatabase int `json:"total_words_in_database"`
	TotalActiveCrawlers  int `json:"total_active_crawlers"`
	TotalCrawlersCreated int `json:"total_crawlers_created"`
}

// ClearResult reports what an administrative clear_all operation deleted.
type ClearResult struct {
	CrawlersCleared int `json:"crawlers_cleared"`
	VisitedCleared  int `json:"visited_cleared"`
}

// ListResult is the GET /crawler/list payload.
type ListResult struct {
	Crawlers    []job.Snapshot `json:"crawlers"`
	TotalCount  int            `json:"total_count"`
	ActiveCount int            `json:"active_count"`
}
