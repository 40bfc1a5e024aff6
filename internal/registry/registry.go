package registry

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/config"
	"github.com/rohmanhakim/docs-crawler/internal/index"
	"github.com/rohmanhakim/docs-crawler/internal/job"
	"github.com/rohmanhakim/docs-crawler/internal/visited"
	"github.com/rohmanhakim/docs-crawler/pkg/hashutil"
)

const userAgent = "docs-crawler/1.0"

// Registry is the platform's single thread-safe map of job-id to job.Job.
// It owns the process-wide Visited Registry and Index Writer every job
// shares, and is the only component allowed to construct a job.Job.
type Registry struct {
	platform    config.PlatformConfig
	dataDir     string
	visitedReg  *visited.Registry
	indexWriter *index.Writer
	httpClient  *http.Client

	mu           sync.RWMutex
	jobs         map[string]*job.Job
	sequence     uint64
	createdCount int
}

// New constructs a Registry rooted at platform.DataDir(). Call Reconcile
// before serving traffic to load the Visited Registry and detect
// Interrupted jobs left by a prior process.
func New(platform config.PlatformConfig) *Registry {
	return &Registry{
		platform:    platform,
		dataDir:     platform.DataDir(),
		visitedReg:  visited.NewRegistry(platform.DataDir()),
		indexWriter: index.NewWriter(platform.DataDir()),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		jobs:        make(map[string]*job.Job),
	}
}

// Reconcile loads the Visited Registry from disk and scans crawlers/*.status
// for every job the prior process knew about, live runtime or not. Each is
// reconstructed into r.jobs so Get/List/ResumeFromFiles can serve it:
// a running (Active/Paused) status with no attached runtime means the
// process died mid-run and is demoted to Interrupted; a terminal status
// (Stopped, Finished) is preserved as-is, per spec.md §4.6's contract that
// "when only the file exists the snapshot's status is whatever the file
// says."
func (r *Registry) Reconcile() error {
	if err := r.visitedReg.LoadAll(); err != nil {
		return &FatalError{Message: err.Error()}
	}

	ids, err := r.statusFileIDs()
	if err != nil {
		return &FatalError{Message: err.Error()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.jobs[id]; ok {
			continue
		}
		snapshot, found, loadErr := job.LoadSnapshot(r.dataDir, id)
		if loadErr != nil || !found {
			continue
		}

		origin, parseErr := url.Parse(snapshot.Origin)
		if parseErr != nil {
			continue
		}
		cfg, cfgErr := config.JobConfigFromFields(*origin, snapshot.MaxDepth, snapshot.HitRate, snapshot.MaxQueueCapacity, snapshot.MaxURLsToVisit)
		if cfgErr != nil {
			continue
		}

		r.jobs[id] = job.ReconstructFromSnapshot(id, cfg, r.dataDir, r.deps(), snapshot)
		r.createdCount++
	}
	return nil
}

// Create validates input, allocates a job id, and starts a new Job Active.
func (r *Registry) Create(input config.JobConfigInput) (job.Snapshot, error) {
	cfg, err := config.NewJobConfig(input, r.platform)
	if err != nil {
		return job.Snapshot{}, err
	}

	r.mu.Lock()
	r.sequence++
	seq := r.sequence
	r.mu.Unlock()

	id, err := newJobID(cfg.Origin().String(), seq)
	if err != nil {
		return job.Snapshot{}, &FatalError{Message: err.Error()}
	}

	j := job.NewJob(id, cfg, r.dataDir, r.deps())
	if startErr := j.Start(); startErr != nil {
		return job.Snapshot{}, startErr
	}

	r.mu.Lock()
	r.jobs[id] = j
	r.createdCount++
	r.mu.Unlock()

	return j.Snapshot(), nil
}

// Get returns the snapshot for id, merging the live runtime when present.
func (r *Registry) Get(id string) (job.Snapshot, error) {
	j, ok := r.lookup(id)
	if !ok {
		return job.Snapshot{}, &NotFoundError{ID: id}
	}
	return j.Snapshot(), nil
}

// List returns every known job's snapshot, live or Interrupted.
func (r *Registry) List() ListResult {
	r.mu.RLock()
	jobs := make([]*job.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	r.mu.RUnlock()

	result := ListResult{Crawlers: make([]job.Snapshot, 0, len(jobs))}
	for _, j := range jobs {
		snapshot := j.Snapshot()
		result.Crawlers = append(result.Crawlers, snapshot)
		result.TotalCount++
		if snapshot.Status == job.StatusActive {
			result.ActiveCount++
		}
	}
	return result
}

// Stats returns the process-wide aggregate counters for GET /crawler/stats.
func (r *Registry) Stats() Stats {
	wordCount, _ := index.CountPostings(r.dataDir)

	list := r.List()
	return Stats{
		TotalVisitedURLs:     r.visitedReg.Size(),
		TotalWordsInDatabase: wordCount,
		TotalActiveCrawlers:  list.ActiveCount,
		TotalCrawlersCreated: r.createdCountSnapshot(),
	}
}

func (r *Registry) createdCountSnapshot() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.createdCount
}

// Pause transitions a job Active -> Paused.
func (r *Registry) Pause(id string) error {
	j, ok := r.lookup(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	return j.Pause()
}

// Resume transitions a job Paused -> Active.
func (r *Registry) Resume(id string) error {
	j, ok := r.lookup(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	return j.Resume()
}

// Stop transitions a job Active/Paused -> Stopped.
func (r *Registry) Stop(id string) error {
	j, ok := r.lookup(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	return j.Stop()
}

// ResumeFromFiles rebuilds a job's frontier from disk and transitions it to
// Active. Legal from Stopped or Interrupted.
func (r *Registry) ResumeFromFiles(id string) error {
	j, ok := r.lookup(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	return j.ResumeFromFiles()
}

// ClearAll stops every live job, then deletes all persisted crawl state:
// visited_urls.data, crawlers/, and storage/. The in-memory job map and
// counters are reset to empty.
func (r *Registry) ClearAll() (ClearResult, error) {
	r.mu.Lock()
	jobs := make([]*job.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	crawlersCleared := len(jobs)
	r.mu.Unlock()

	for _, j := range jobs {
		snapshot := j.Snapshot()
		if snapshot.Status == job.StatusActive || snapshot.Status == job.StatusPaused {
			_ = j.Stop()
		}
	}

	visitedCleared := r.visitedReg.Size()

	for _, rel := range []string{"visited_urls.data", "crawlers", "storage"} {
		if err := os.RemoveAll(filepath.Join(r.dataDir, rel)); err != nil {
			return ClearResult{}, &FatalError{Message: err.Error()}
		}
	}

	r.mu.Lock()
	r.jobs = make(map[string]*job.Job)
	r.sequence = 0
	r.createdCount = 0
	r.mu.Unlock()

	r.visitedReg = visited.NewRegistry(r.dataDir)
	r.indexWriter = index.NewWriter(r.dataDir)

	return ClearResult{CrawlersCleared: crawlersCleared, VisitedCleared: visitedCleared}, nil
}

func (r *Registry) lookup(id string) (*job.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

func (r *Registry) deps() job.Deps {
	return job.Deps{
		VisitedReg:  r.visitedReg,
		IndexWriter: r.indexWriter,
		HTTPClient:  r.httpClient,
		UserAgent:   userAgent,
		RandomSeed:  time.Now().UnixNano(),
		LogRingSize: r.platform.LogRingSize(),
	}
}

func (r *Registry) statusFileIDs() ([]string, error) {
	dir := filepath.Join(r.dataDir, "crawlers")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		const suffix = ".status"
		if entry.IsDir() || len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		ids = append(ids, name[:len(name)-len(suffix)])
	}
	return ids, nil
}

// newJobID derives a short, collision-resistant job id from the origin, a
// monotonic creation sequence, and wall-clock time, hashed with blake3 the
// same way the platform fingerprints fetched content.
func newJobID(origin string, seq uint64) (string, error) {
	payload := fmt.Sprintf("%s|%d|%d", origin, seq, time.Now().UnixNano())
	full, err := hashutil.HashBytes([]byte(payload), hashutil.HashAlgoBLAKE3)
	if err != nil {
		return "", err
	}
	return full[:16], nil
}

