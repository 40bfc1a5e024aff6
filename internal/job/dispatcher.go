package job

import (
	"context"
	"net/url"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/frontier"
	"github.com/rohmanhakim/docs-crawler/internal/htmlextract"
	"github.com/rohmanhakim/docs-crawler/internal/index"
	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/internal/snippet"
)

// runSession is the single dispatcher for one Active/Paused lifecycle
// segment: it drains the Frontier and hands tokens to a bounded worker
// pool, until the frontier empties, the visit budget is hit, or the
// session's context is cancelled by Pause/Stop.
func (j *Job) runSession(ctx context.Context, loopDone chan<- struct{}) {
	defer close(loopDone)

	for {
		if ctx.Err() != nil {
			j.wg.Wait()
			j.completeSession()
			return
		}

		if j.budgetExceeded() {
			j.wg.Wait()
			j.setTerminal(StatusFinished)
			return
		}

		token, ok, ferr := j.frontier.Pop()
		if ferr != nil {
			j.failOnPersistenceError(ferr)
			continue
		}
		if !ok {
			j.wg.Wait()
			if ctx.Err() == nil && j.frontier.Size() == 0 {
				j.setTerminal(StatusFinished)
				return
			}
			continue
		}

		if !j.rateLimiter.Acquire(ctx.Done()) {
			// Woken by Pause/Stop, not a token: put the URL back so it is not
			// lost, then let the ctx.Err() branch above handle termination.
			j.requeue(token)
			continue
		}

		j.workerSem <- struct{}{}
		j.wg.Add(1)
		go func(tok frontier.CrawlToken) {
			defer j.wg.Done()
			defer func() { <-j.workerSem }()
			j.processToken(ctx, tok)
		}(token)
	}
}

// completeSession applies whichever of Paused/Stopped was requested when
// the session's context was cancelled.
func (j *Job) completeSession() {
	j.mu.Lock()
	target := j.pendingStatus
	j.mu.Unlock()
	if target == "" {
		target = StatusStopped
	}
	j.setTerminal(target)
}

func (j *Job) requeue(token frontier.CrawlToken) {
	if _, err := j.frontier.Push(token.URL(), token.Depth()); err != nil {
		j.failOnPersistenceError(err)
	}
}

func (j *Job) budgetExceeded() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	max := j.cfg.MaxURLsToVisit()
	return max > 0 && j.visitedCount >= max
}

// processToken runs the per-URL pipeline from spec.md §4.5: fetch, mark
// visited (success or failure alike — a failed fetch still counts as
// visited to prevent refetch), extract, enqueue newly-discovered links,
// write postings.
func (j *Job) processToken(ctx context.Context, token frontier.CrawlToken) {
	u := token.URL()
	depth := token.Depth()

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	result, fetchErr := j.fetcherImpl.Fetch(fetchCtx, depth, u, j.retryParam)

	wasFirstVisit, markErr := j.visitedReg.Mark(u.String(), j.id)
	if markErr != nil {
		j.failOnPersistenceError(markErr)
		return
	}
	if wasFirstVisit {
		j.incrementVisited()
	}

	if fetchErr != nil {
		// Already logged by the fetcher via metadata.RecordError; the URL
		// stays visited and the job moves on to the next frontier entry.
		return
	}

	extraction, extractErr := j.extractor.Extract(u, result.Body())
	if extractErr != nil {
		// Already logged by the extractor; counted as visited, no harvest.
		return
	}

	if !j.budgetExceeded() {
		j.expandFrontier(depth, extraction)
	}

	j.writePostings(u, depth, extraction.Tokens)
	j.recordExcerpt(u, result.Body())
	j.persistStatus()
}

// recordExcerpt logs a short markdown excerpt of the fetched page for
// operator diagnostics. A failed conversion is logged and otherwise
// ignored: it never affects visited state, the frontier, or the index.
func (j *Job) recordExcerpt(pageURL url.URL, body []byte) {
	excerpt, err := snippet.FromHTML(body)
	if err != nil {
		j.recorder.RecordError(time.Now(), "snippet", "FromHTML", metadata.CauseContentInvalid,
			err.Error(), []metadata.Attribute{metadata.NewAttr(metadata.AttrURL, pageURL.String())})
		return
	}
	if excerpt == "" {
		return
	}
	j.recorder.RecordArtifact(metadata.ArtifactExcerpt, pageURL.String(), []metadata.Attribute{
		metadata.NewAttr(metadata.AttrMessage, excerpt),
	})
}

func (j *Job) expandFrontier(depth int, extraction htmlextract.ExtractionResult) {
	for _, link := range extraction.Links {
		result, err := j.frontier.Push(link, depth+1)
		if err != nil {
			j.failOnPersistenceError(err)
			continue
		}
		if result == frontier.RejectedFull {
			j.recorder.RecordError(time.Now(), "frontier", "Push", metadata.CauseUnknown,
				"queue full, link dropped", []metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, link.String()),
				})
		}
	}
}

func (j *Job) writePostings(relevantURL url.URL, depth int, tokens map[string]int) {
	if len(tokens) == 0 {
		return
	}

	postings := make([]index.Posting, 0, len(tokens))
	for word, freq := range tokens {
		postings = append(postings, index.Posting{
			Word:        word,
			RelevantURL: relevantURL.String(),
			OriginURL:   j.cfg.Origin().String(),
			Depth:       depth,
			Frequency:   freq,
		})
	}

	if err := j.indexWriter.Append(postings); err != nil {
		j.failOnPersistenceError(err)
	}
}

func (j *Job) incrementVisited() {
	j.mu.Lock()
	j.visitedCount++
	j.updatedAt = time.Now()
	j.mu.Unlock()
}
