package frontier_test

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/docs-crawler/internal/frontier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

type fakeVisited struct {
	seen map[string]bool
}

func (f *fakeVisited) Contains(rawURL string) bool {
	return f.seen[rawURL]
}

func TestFrontier_PushPopFIFOOrder(t *testing.T) {
	f := frontier.NewFrontier("job-1", t.TempDir(), 10, 100, nil)

	a := mustURL(t, "https://example.com/a")
	b := mustURL(t, "https://example.com/b")

	result, err := f.Push(a, 0)
	require.Nil(t, err)
	assert.Equal(t, frontier.Accepted, result)

	result, err = f.Push(b, 1)
	require.Nil(t, err)
	assert.Equal(t, frontier.Accepted, result)

	token, ok, err := f.Pop()
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, a, token.URL())

	token, ok, err = f.Pop()
	require.Nil(t, err)
	require.True(t, ok)
	assert.Equal(t, b, token.URL())

	_, ok, err = f.Pop()
	require.Nil(t, err)
	assert.False(t, ok)
}

func TestFrontier_PushRejectsBudgetExceeded(t *testing.T) {
	f := frontier.NewFrontier("job-1", t.TempDir(), 1, 100, nil)

	result, err := f.Push(mustURL(t, "https://example.com/too-deep"), 2)
	require.Nil(t, err)
	assert.Equal(t, frontier.RejectedBudgetExceeded, result)
	assert.Equal(t, 0, f.Size())
}

func TestFrontier_PushRejectsAlreadyVisited(t *testing.T) {
	visited := &fakeVisited{seen: map[string]bool{"https://example.com/seen": true}}
	f := frontier.NewFrontier("job-1", t.TempDir(), 10, 100, visited)

	result, err := f.Push(mustURL(t, "https://example.com/seen"), 0)
	require.Nil(t, err)
	assert.Equal(t, frontier.RejectedAlreadyVisited, result)
	assert.Equal(t, 0, f.Size())
}

func TestFrontier_PushRejectsFullAndDropsNewestPreservingOrder(t *testing.T) {
	f := frontier.NewFrontier("job-1", t.TempDir(), 10, 2, nil)

	a := mustURL(t, "https://example.com/a")
	b := mustURL(t, "https://example.com/b")
	c := mustURL(t, "https://example.com/c")

	result, err := f.Push(a, 0)
	require.Nil(t, err)
	require.Equal(t, frontier.Accepted, result)

	result, err = f.Push(b, 0)
	require.Nil(t, err)
	require.Equal(t, frontier.Accepted, result)

	result, err = f.Push(c, 0)
	require.Nil(t, err)
	assert.Equal(t, frontier.RejectedFull, result)

	snapshot := f.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, a, snapshot[0].URL())
	assert.Equal(t, b, snapshot[1].URL())
}

func TestFrontier_MirrorsEveryMutationToQueueFile(t *testing.T) {
	dataDir := t.TempDir()
	f := frontier.NewFrontier("job-1", dataDir, 10, 100, nil)

	a := mustURL(t, "https://example.com/a")
	_, err := f.Push(a, 3)
	require.Nil(t, err)

	queuePath := filepath.Join(dataDir, "crawlers", "job-1.queue")
	content, readErr := os.ReadFile(queuePath)
	require.NoError(t, readErr)
	assert.Equal(t, "https://example.com/a 3\n", string(content))

	_, _, err = f.Pop()
	require.Nil(t, err)

	content, readErr = os.ReadFile(queuePath)
	require.NoError(t, readErr)
	assert.Equal(t, "", string(content))
}

func TestFrontier_RestoreRebuildsFromQueueFile(t *testing.T) {
	dataDir := t.TempDir()
	seed := frontier.NewFrontier("job-1", dataDir, 10, 100, nil)

	a := mustURL(t, "https://example.com/a")
	b := mustURL(t, "https://example.com/b")
	_, err := seed.Push(a, 0)
	require.Nil(t, err)
	_, err = seed.Push(b, 1)
	require.Nil(t, err)

	restored := frontier.NewFrontier("job-1", dataDir, 10, 100, nil)
	require.Nil(t, restored.Restore())

	snapshot := restored.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, a, snapshot[0].URL())
	assert.Equal(t, 0, snapshot[0].Depth())
	assert.Equal(t, b, snapshot[1].URL())
	assert.Equal(t, 1, snapshot[1].Depth())
}

func TestFrontier_RestoreWithNoQueueFileIsNoOp(t *testing.T) {
	f := frontier.NewFrontier("job-never-ran", t.TempDir(), 10, 100, nil)
	require.Nil(t, f.Restore())
	assert.Equal(t, 0, f.Size())
}

func TestFrontier_SizeTracksPushAndPop(t *testing.T) {
	f := frontier.NewFrontier("job-1", t.TempDir(), 10, 100, nil)
	assert.Equal(t, 0, f.Size())

	_, err := f.Push(mustURL(t, "https://example.com/a"), 0)
	require.Nil(t, err)
	assert.Equal(t, 1, f.Size())

	_, _, err = f.Pop()
	require.Nil(t, err)
	assert.Equal(t, 0, f.Size())
}
