package index

import (
	"path/filepath"
	"sync"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/fileutil"
)

/*
Writer Responsibilities
- Group postings by word[0] (ShardLetter)
- Append each posting as a single, line-atomic write to storage/{letter}.data
- Never compact or dedup: ranking at query time accounts for repeats

Writes within one shard are serialized by a per-shard lock; across shards
they may interleave, matching spec.md §5's ordering guarantees.
*/

// Writer appends postings to dataDir/storage/{letter}.data shard files.
type Writer struct {
	dataDir string

	mu     sync.Mutex
	shards map[string]*sync.Mutex
}

// NewWriter constructs a Writer rooted at dataDir.
func NewWriter(dataDir string) *Writer {
	return &Writer{
		dataDir: dataDir,
		shards:  make(map[string]*sync.Mutex),
	}
}

// Append groups postings by ShardLetter and appends each as its own line.
// A failure on one posting does not prevent the rest from being attempted;
// the first encountered error is returned after all postings are tried.
func (w *Writer) Append(postings []Posting) failure.ClassifiedError {
	var firstErr failure.ClassifiedError
	for _, p := range postings {
		if err := w.appendOne(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *Writer) appendOne(p Posting) failure.ClassifiedError {
	shard := ShardLetter(p.Word)
	lock := w.shardLock(shard)

	lock.Lock()
	defer lock.Unlock()

	path := w.shardPath(shard)
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return wrapFileError(shard, err)
	}
	if err := fileutil.AppendLine(path, p.Line()); err != nil {
		return wrapFileError(shard, err)
	}
	return nil
}

func (w *Writer) shardLock(shard string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.shards[shard]
	if !ok {
		lock = &sync.Mutex{}
		w.shards[shard] = lock
	}
	return lock
}

func (w *Writer) shardPath(shard string) string {
	return filepath.Join(w.dataDir, "storage", shard+".data")
}

// ShardPath is the storage/{letter}.data path a word's postings live in,
// exported so the Search Engine (C8) can resolve the same path for reads.
func ShardPath(dataDir, shard string) string {
	return filepath.Join(dataDir, "storage", shard+".data")
}
