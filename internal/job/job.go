// Package job implements the Job Runtime (C5): a per-job dispatcher and
// bounded worker pool draining a Frontier, a rate limiter admitting fetches,
// and the five-state lifecycle (Active/Paused/Stopped/Finished/Interrupted)
// from spec.md §4.5. One Job owns one Frontier and shares the process-wide
// Visited Registry and Index Writer with every other Job.
package job

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/config"
	"github.com/rohmanhakim/docs-crawler/internal/fetcher"
	"github.com/rohmanhakim/docs-crawler/internal/frontier"
	"github.com/rohmanhakim/docs-crawler/internal/htmlextract"
	"github.com/rohmanhakim/docs-crawler/internal/index"
	"github.com/rohmanhakim/docs-crawler/internal/joblog"
	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/internal/visited"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/fileutil"
	"github.com/rohmanhakim/docs-crawler/pkg/limiter"
	"github.com/rohmanhakim/docs-crawler/pkg/retry"
	"github.com/rohmanhakim/docs-crawler/pkg/timeutil"
)

// Job is a single crawl: its configuration, its own Frontier and log ring,
// and references to the process-wide collaborators (Visited Registry, Index
// Writer). Exactly one dispatch loop runs at a time; Pause/Stop stop it,
// Resume/ResumeFromFiles start a new one.
type Job struct {
	id        string
	dataDir   string
	cfg       config.JobConfig
	createdAt time.Time

	mu            sync.Mutex
	status        Status
	pendingStatus Status
	visitedCount  int
	updatedAt     time.Time
	sessionCancel context.CancelFunc
	loopDone      chan struct{}

	frontier    *frontier.Frontier
	visitedReg  *visited.Registry
	indexWriter *index.Writer
	extractor   htmlextract.DomExtractor
	fetcherImpl fetcher.Fetcher
	rateLimiter limiter.RateLimiter
	recorder    *metadata.Recorder
	logRing     *joblog.Ring
	retryParam  retry.RetryParam

	wg        sync.WaitGroup
	workerSem chan struct{}
}

// Deps bundles the process-wide collaborators a Job needs, so the Registry
// (C6) can construct many Jobs against the same shared state without each
// Job knowing how those collaborators themselves are built.
type Deps struct {
	VisitedReg  *visited.Registry
	IndexWriter *index.Writer
	HTTPClient  *http.Client
	UserAgent   string
	RandomSeed  int64
	LogRingSize int
}

// NewJob constructs a Job in its pre-start state (Status == ""). Call Start
// to seed the frontier with the origin and begin crawling.
func NewJob(id string, cfg config.JobConfig, dataDir string, deps Deps) *Job {
	ring := joblog.NewRing(deps.LogRingSize)
	recorder := metadata.NewRecorder(id, slog.Default(), ring)

	rateLimiter := limiter.NewTokenBucketLimiter()
	rateLimiter.Init(cfg.HitRate(), deps.RandomSeed)

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	htmlFetcher := fetcher.NewHtmlFetcher(recorder)
	htmlFetcher.Init(httpClient, deps.UserAgent)
	htmlFetcher.SetRateLimiter(rateLimiter)

	now := time.Now()

	return &Job{
		id:          id,
		dataDir:     dataDir,
		cfg:         cfg,
		createdAt:   now,
		updatedAt:   now,
		frontier:    frontier.NewFrontier(id, dataDir, cfg.MaxDepth(), cfg.MaxQueueCapacity(), deps.VisitedReg),
		visitedReg:  deps.VisitedReg,
		indexWriter: deps.IndexWriter,
		extractor:   htmlextract.NewDomExtractor(recorder),
		fetcherImpl: &htmlFetcher,
		rateLimiter: rateLimiter,
		recorder:    recorder,
		logRing:     ring,
		retryParam: retry.NewRetryParam(
			1*time.Second,
			250*time.Millisecond,
			deps.RandomSeed,
			3,
			timeutil.NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
		),
		workerSem: make(chan struct{}, workerPoolSize),
	}
}

// ID returns the job's opaque identifier.
func (j *Job) ID() string { return j.id }

// Snapshot returns the job's current descriptor, merging live counters with
// the log ring and frontier contents.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	status := j.status
	visitedCount := j.visitedCount
	updatedAt := j.updatedAt
	j.mu.Unlock()

	queue := make([]string, 0)
	for _, tok := range j.frontier.Snapshot() {
		u := tok.URL()
		queue = append(queue, u.String())
	}

	return Snapshot{
		CrawlerID:        j.id,
		Origin:           j.cfg.Origin().String(),
		MaxDepth:         j.cfg.MaxDepth(),
		HitRate:          j.cfg.HitRate(),
		MaxQueueCapacity: j.cfg.MaxQueueCapacity(),
		MaxURLsToVisit:   j.cfg.MaxURLsToVisit(),
		Status:           status,
		VisitedCount:     visitedCount,
		CreatedAt:        j.createdAt.Unix(),
		UpdatedAt:        updatedAt.Unix(),
		Queue:            queue,
		Logs:             j.logRing.Snapshot(),
	}
}

// Start transitions a freshly-constructed Job into Active, seeding the
// frontier with the origin at depth 0. Legal only once, from the zero
// status.
func (j *Job) Start() failure.ClassifiedError {
	j.mu.Lock()
	if j.status != "" {
		status := j.status
		j.mu.Unlock()
		return &IllegalTransitionError{From: status, To: StatusActive}
	}
	j.mu.Unlock()

	if _, err := j.frontier.Push(j.cfg.Origin(), 0); err != nil {
		return err
	}
	j.startSession(StatusActive)
	return nil
}

// Pause quiesces dispatch: no new fetches start; in-flight fetches complete
// normally. Legal only from Active.
func (j *Job) Pause() failure.ClassifiedError {
	j.mu.Lock()
	if j.status != StatusActive {
		status := j.status
		j.mu.Unlock()
		return &IllegalTransitionError{From: status, To: StatusPaused}
	}
	j.pendingStatus = StatusPaused
	cancel := j.sessionCancel
	loopDone := j.loopDone
	j.mu.Unlock()

	cancel()
	<-loopDone
	return nil
}

// Resume transitions a Paused job back to Active, starting a fresh dispatch
// session against the frontier as it stands in memory.
func (j *Job) Resume() failure.ClassifiedError {
	j.mu.Lock()
	if j.status != StatusPaused {
		status := j.status
		j.mu.Unlock()
		return &IllegalTransitionError{From: status, To: StatusActive}
	}
	j.mu.Unlock()

	j.startSession(StatusActive)
	return nil
}

// Stop cancels in-flight fetches at the next safe point and transitions to
// Stopped. Legal from Active or Paused.
func (j *Job) Stop() failure.ClassifiedError {
	j.mu.Lock()
	status := j.status
	if status != StatusActive && status != StatusPaused {
		j.mu.Unlock()
		return &IllegalTransitionError{From: status, To: StatusStopped}
	}
	if status == StatusPaused {
		j.mu.Unlock()
		j.setTerminal(StatusStopped)
		return nil
	}
	j.pendingStatus = StatusStopped
	cancel := j.sessionCancel
	loopDone := j.loopDone
	j.mu.Unlock()

	cancel()
	<-loopDone
	return nil
}

// ResumeFromFiles rebuilds the frontier from crawlers/{id}.queue and
// transitions to Active. Legal only from Stopped or Interrupted, per
// spec.md §4.5 — RESUME_FROM_FILES is the only path back to Active from a
// terminated-on-disk state.
func (j *Job) ResumeFromFiles() failure.ClassifiedError {
	j.mu.Lock()
	status := j.status
	if status != StatusStopped && status != StatusInterrupted {
		j.mu.Unlock()
		return &IllegalTransitionError{From: status, To: StatusActive}
	}
	j.mu.Unlock()

	if err := j.frontier.Restore(); err != nil {
		return err
	}
	j.startSession(StatusActive)
	return nil
}

// MarkInterrupted sets the job's status to Interrupted and persists it, for
// a job whose status file shows Active/Paused but has no attached runtime.
// Registry.Reconcile does not call it; it demotes such jobs through
// ReconstructFromSnapshot.
func (j *Job) MarkInterrupted() {
	j.mu.Lock()
	j.status = StatusInterrupted
	j.updatedAt = time.Now()
	j.mu.Unlock()
	j.persistStatus()
}

func (j *Job) startSession(initial Status) {
	ctx, cancel := context.WithCancel(context.Background())

	j.mu.Lock()
	j.status = initial
	j.pendingStatus = ""
	j.updatedAt = time.Now()
	j.sessionCancel = cancel
	j.loopDone = make(chan struct{})
	loopDone := j.loopDone
	j.mu.Unlock()

	j.persistStatus()
	go j.runSession(ctx, loopDone)
}

func (j *Job) setTerminal(status Status) {
	j.mu.Lock()
	j.status = status
	j.updatedAt = time.Now()
	visitedCount := j.visitedCount
	j.mu.Unlock()

	j.persistStatus()

	if status == StatusFinished || status == StatusStopped {
		j.recorder.RecordFinalCrawlStats(visitedCount, 0, 0, time.Since(j.createdAt))
	}
}

// failOnPersistenceError records the failure and drives the job to Stopped,
// per spec.md §7: disk-full/permission failures never kill the process,
// they end the one job that hit them.
func (j *Job) failOnPersistenceError(err failure.ClassifiedError) {
	j.recorder.RecordError(time.Now(), "job", "persist", metadata.CauseStorageFailure, err.Error(), nil)

	j.mu.Lock()
	var cancel context.CancelFunc
	if j.status == StatusActive {
		j.pendingStatus = StatusStopped
		cancel = j.sessionCancel
	}
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (j *Job) persistStatus() {
	snapshot := j.Snapshot()
	dto := statusFileDTO{
		CrawlerID:        snapshot.CrawlerID,
		Origin:           snapshot.Origin,
		MaxDepth:         snapshot.MaxDepth,
		HitRate:          snapshot.HitRate,
		MaxQueueCapacity: snapshot.MaxQueueCapacity,
		MaxURLsToVisit:   snapshot.MaxURLsToVisit,
		Status:           snapshot.Status,
		VisitedCount:     snapshot.VisitedCount,
		CreatedAt:        snapshot.CreatedAt,
		UpdatedAt:        snapshot.UpdatedAt,
		Queue:            snapshot.Queue,
	}

	body, err := json.Marshal(dto)
	if err != nil {
		return
	}

	path := j.statusPath()
	if derr := fileutil.EnsureDir(filepath.Dir(path)); derr != nil {
		return
	}
	_ = os.WriteFile(path, body, 0644)
}

func (j *Job) statusPath() string {
	return filepath.Join(j.dataDir, "crawlers", j.id+".status")
}

// LoadSnapshot reads crawlers/{id}.status without requiring a live Job, for
// the Registry to merge on-disk state for jobs it has no runtime for.
func LoadSnapshot(dataDir, id string) (Snapshot, bool, failure.ClassifiedError) {
	path := filepath.Join(dataDir, "crawlers", id+".status")
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, &PersistenceError{Message: "read status file", Cause: &fileutil.FileError{Message: err.Error(), Retryable: false, Cause: fileutil.ErrCausePathError}}
	}

	var dto statusFileDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return Snapshot{}, false, &PersistenceError{Message: "parse status file", Cause: &fileutil.FileError{Message: err.Error(), Retryable: false, Cause: fileutil.ErrCausePathError}}
	}
	return dto.toSnapshot(nil), true, nil
}

// ReconstructFromSnapshot rebuilds a Job purely to carry the status and
// counters recorded in snapshot — used by the Registry at process start to
// repopulate every job found on disk, live runtime or not. A snapshot whose
// status was Active or Paused is demoted to Interrupted (spec.md §4.5: a
// running state with no attached runtime means the process died mid-run);
// any other status (Stopped, Finished) is preserved verbatim, since those
// are legitimate terminal states the Registry must still serve via Get/List
// and, for Stopped, via ResumeFromFiles. The returned Job is otherwise fully
// wired (its Frontier will read crawlers/{id}.queue on ResumeFromFiles) but
// must never be Started directly.
func ReconstructFromSnapshot(id string, cfg config.JobConfig, dataDir string, deps Deps, snapshot Snapshot) *Job {
	j := NewJob(id, cfg, dataDir, deps)
	status := snapshot.Status
	if status == StatusActive || status == StatusPaused {
		status = StatusInterrupted
	}
	j.status = status
	j.visitedCount = snapshot.VisitedCount
	j.createdAt = time.Unix(snapshot.CreatedAt, 0)
	j.updatedAt = time.Unix(snapshot.UpdatedAt, 0)
	return j
}
