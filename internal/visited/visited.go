// Package visited implements the platform-wide Visited Registry (C4): once
// any job fetches a URL, no job ever fetches it again. It is the single
// source of truth the Frontier (C3) consults at enqueue time.
package visited

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/fileutil"
)

const fileName = "visited_urls.data"

// Registry is process-wide: one instance is shared by every job in the
// platform, backed by a single append-only file.
type Registry struct {
	mu   sync.Mutex
	seen map[string]struct{}
	path string
}

// NewRegistry builds an empty Registry backed by dataDir/visited_urls.data.
// Call LoadAll to populate it from a prior run before serving traffic.
func NewRegistry(dataDir string) *Registry {
	return &Registry{
		seen: make(map[string]struct{}),
		path: filepath.Join(dataDir, fileName),
	}
}

// LoadAll populates the in-memory set from the on-disk append log.
// Duplicate lines are tolerated (the set absorbs them). A missing file is
// not an error: it means the platform has never recorded a visit.
func (r *Registry) LoadAll() failure.ClassifiedError {
	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &VisitedError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError}
	}
	defer file.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		r.seen[fields[0]] = struct{}{}
	}
	return nil
}

// Contains reports whether rawURL has ever been visited, reading only the
// in-memory set (never the disk).
func (r *Registry) Contains(rawURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[rawURL]
	return ok
}

// Mark records rawURL as visited by jobID. It is idempotent: a second call
// for the same URL is a no-op and returns false. A first call appends
// "{url} {job_id} {ts}" to the on-disk log and returns true.
func (r *Registry) Mark(rawURL string, jobID string) (bool, failure.ClassifiedError) {
	r.mu.Lock()
	if _, ok := r.seen[rawURL]; ok {
		r.mu.Unlock()
		return false, nil
	}
	r.seen[rawURL] = struct{}{}
	r.mu.Unlock()

	line := fmt.Sprintf("%s %s %d", rawURL, jobID, time.Now().Unix())

	if err := fileutil.EnsureDir(filepath.Dir(r.path)); err != nil {
		r.unmark(rawURL)
		return false, wrapFileError(err)
	}
	if err := fileutil.AppendLine(r.path, line); err != nil {
		r.unmark(rawURL)
		return false, wrapFileError(err)
	}
	return true, nil
}

func (r *Registry) unmark(rawURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, rawURL)
}

// Size returns the number of URLs currently known to be visited.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
