package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/docs-crawler/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_GroupsPostingsByFirstLetter(t *testing.T) {
	dataDir := t.TempDir()
	w := index.NewWriter(dataDir)

	require.Nil(t, w.Append([]index.Posting{
		{Word: "python", RelevantURL: "http://a", OriginURL: "http://a", Depth: 0, Frequency: 1},
		{Word: "pandas", RelevantURL: "http://a", OriginURL: "http://a", Depth: 0, Frequency: 2},
	}))

	body, err := os.ReadFile(filepath.Join(dataDir, "storage", "p.data"))
	require.NoError(t, err)
	assert.Equal(t, "python http://a http://a 0 1\npandas http://a http://a 0 2\n", string(body))
}

func TestAppend_DoesNotDedupRepeatedPostings(t *testing.T) {
	dataDir := t.TempDir()
	w := index.NewWriter(dataDir)

	posting := index.Posting{Word: "golang", RelevantURL: "http://x", OriginURL: "http://x", Depth: 0, Frequency: 1}
	require.Nil(t, w.Append([]index.Posting{posting}))
	require.Nil(t, w.Append([]index.Posting{posting}))

	count, err := index.CountPostings(dataDir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestShardLetter_NonASCIIUsesHexCodePoint(t *testing.T) {
	assert.Equal(t, "u00e9", index.ShardLetter("école"))
	assert.Equal(t, "p", index.ShardLetter("Python"))
	assert.Equal(t, "u0", index.ShardLetter(""))
}

func TestCountPostings_MissingStorageDirIsNotAnError(t *testing.T) {
	count, err := index.CountPostings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountPostings_SumsAcrossShards(t *testing.T) {
	dataDir := t.TempDir()
	w := index.NewWriter(dataDir)
	require.Nil(t, w.Append([]index.Posting{
		{Word: "apple", RelevantURL: "http://a", OriginURL: "http://a", Depth: 0, Frequency: 1},
		{Word: "banana", RelevantURL: "http://b", OriginURL: "http://b", Depth: 0, Frequency: 1},
		{Word: "apricot", RelevantURL: "http://c", OriginURL: "http://c", Depth: 0, Frequency: 1},
	}))

	count, err := index.CountPostings(dataDir)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
