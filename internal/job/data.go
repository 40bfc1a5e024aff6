package job

import "time"

// Status is one of the five states a job descriptor can occupy, per the
// state machine in spec.md §4.5. The zero value "" means "never started".
type Status string

const (
	StatusActive      Status = "Active"
	StatusPaused      Status = "Paused"
	StatusStopped     Status = "Stopped"
	StatusFinished    Status = "Finished"
	StatusInterrupted Status = "Interrupted"
)

// Snapshot is the read-only view of a Job's descriptor returned by the API
// and persisted to crawlers/{id}.status. Timestamps are Unix seconds.
// MaxQueueCapacity/MaxURLsToVisit ride along so the Registry (C6) can
// rebuild a full JobConfig for an Interrupted job it has no live runtime
// for, without needing the original creation request.
type Snapshot struct {
	CrawlerID        string   `json:"crawler_id"`
	Origin           string   `json:"origin"`
	MaxDepth         int      `json:"max_depth"`
	HitRate          float64  `json:"hit_rate"`
	MaxQueueCapacity int      `json:"max_queue_capacity"`
	MaxURLsToVisit   int      `json:"max_urls_to_visit"`
	Status           Status   `json:"status"`
	VisitedCount     int      `json:"visited_count"`
	CreatedAt        int64    `json:"created_at"`
	UpdatedAt        int64    `json:"updated_at"`
	Queue            []string `json:"queue"`
	Logs             []string `json:"logs"`
}

// statusFileDTO is what actually round-trips through crawlers/{id}.status.
// It omits the in-memory-only Logs field (the ring buffer does not survive a
// restart) so a reload never fabricates log history that never happened.
type statusFileDTO struct {
	CrawlerID        string   `json:"crawler_id"`
	Origin           string   `json:"origin"`
	MaxDepth         int      `json:"max_depth"`
	HitRate          float64  `json:"hit_rate"`
	MaxQueueCapacity int      `json:"max_queue_capacity"`
	MaxURLsToVisit   int      `json:"max_urls_to_visit"`
	Status           Status   `json:"status"`
	VisitedCount     int      `json:"visited_count"`
	CreatedAt        int64    `json:"created_at"`
	UpdatedAt        int64    `json:"updated_at"`
	Queue            []string `json:"queue"`
}

func (d statusFileDTO) toSnapshot(logs []string) Snapshot {
	return Snapshot{
		CrawlerID:        d.CrawlerID,
		Origin:           d.Origin,
		MaxDepth:         d.MaxDepth,
		HitRate:          d.HitRate,
		MaxQueueCapacity: d.MaxQueueCapacity,
		MaxURLsToVisit:   d.MaxURLsToVisit,
		Status:           d.Status,
		VisitedCount:     d.VisitedCount,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		Queue:            d.Queue,
		Logs:             logs,
	}
}

const (
	// workerPoolSize bounds concurrent in-flight fetches per job, independent
	// of the rate limiter's sustained-rate admission.
	workerPoolSize = 8
	fetchTimeout   = 10 * time.Second
)
