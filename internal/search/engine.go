package search

import (
	"bufio"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rohmanhakim/docs-crawler/internal/htmlextract"
	"github.com/rohmanhakim/docs-crawler/internal/index"
)

// Engine answers queries against dataDir/storage/{letter}.data shards.
type Engine struct {
	dataDir string
	rng     *rand.Rand
}

// NewEngine builds an Engine rooted at dataDir. randomSeed seeds the RNG
// used only by RandomWord, so the "lucky" UI path is reproducible in tests.
func NewEngine(dataDir string, randomSeed int64) *Engine {
	return &Engine{
		dataDir: dataDir,
		rng:     rand.New(rand.NewSource(randomSeed)),
	}
}

// Search tokenizes query identically to the extractor, scans the shard for
// each distinct first letter among the tokens, and keeps any line whose
// stored word has at least one query token as a prefix (progressive prefix
// match). total counts every match before paging; results are sorted by
// score descending, then word ascending, then URL ascending, then sliced
// [offset, offset+limit).
func (e *Engine) Search(query string, limit, offset int) (Page, error) {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return Page{QueryWords: tokens}, nil
	}

	shards := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		shards[index.ShardLetter(tok)] = struct{}{}
	}

	var matches []Result
	for shard := range shards {
		lines, err := readShard(e.shardPath(shard))
		if err != nil {
			return Page{}, err
		}
		for _, line := range lines {
			matched, exact := matchesAnyToken(line.word, tokens)
			if !matched {
				continue
			}
			matches = append(matches, Result{
				Word:        line.word,
				RelevantURL: line.relevantURL,
				OriginURL:   line.originURL,
				Depth:       line.depth,
				Frequency:   line.frequency,
				Score:       score(line, exact),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Word != matches[j].Word {
			return matches[i].Word < matches[j].Word
		}
		return matches[i].RelevantURL < matches[j].RelevantURL
	})

	total := len(matches)
	paged := paginate(matches, limit, offset)

	return Page{Total: total, QueryWords: tokens, Results: paged}, nil
}

// RandomWord picks a uniform random word over the platform's non-empty
// shard files: a uniform random shard, then a uniform random line within
// it, returning that line's word field.
func (e *Engine) RandomWord() (string, error) {
	shardDir := filepath.Join(e.dataDir, "storage")
	entries, err := os.ReadDir(shardDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &SearchError{Message: "storage directory does not exist", Cause: ErrCauseEmptyCorpus}
		}
		return "", &SearchError{Message: err.Error(), Cause: ErrCauseReadFail}
	}

	var nonEmpty []string
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".data") {
			continue
		}
		info, err := ent.Info()
		if err == nil && info.Size() > 0 {
			nonEmpty = append(nonEmpty, filepath.Join(shardDir, ent.Name()))
		}
	}
	if len(nonEmpty) == 0 {
		return "", &SearchError{Message: "no postings recorded yet", Cause: ErrCauseEmptyCorpus}
	}

	chosenShard := nonEmpty[e.rng.Intn(len(nonEmpty))]
	lines, err := readShard(chosenShard)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", &SearchError{Message: "shard file is empty", Cause: ErrCauseEmptyCorpus}
	}
	return lines[e.rng.Intn(len(lines))].word, nil
}

func (e *Engine) shardPath(shard string) string {
	return index.ShardPath(e.dataDir, shard)
}

// queryTokens tokenizes query with the extractor's own word rule (so a
// query is split exactly like a document was at index time) and returns
// the distinct words found, sorted for deterministic shard grouping.
func queryTokens(query string) []string {
	tokenCounts := htmlextract.Tokenize(query)
	out := make([]string, 0, len(tokenCounts))
	for word := range tokenCounts {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

func matchesAnyToken(word string, tokens []string) (matched bool, exact bool) {
	for _, tok := range tokens {
		if strings.HasPrefix(word, tok) {
			matched = true
			if word == tok {
				exact = true
			}
		}
	}
	return matched, exact
}

func paginate(results []Result, limit, offset int) []Result {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return nil
	}
	end := len(results)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]Result, end-offset)
	copy(out, results[offset:end])
	return out
}

func readShard(path string) ([]postingLine, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &SearchError{Message: err.Error(), Cause: ErrCauseReadFail}
	}
	defer file.Close()

	var lines []postingLine
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		parsed, ok := parsePostingLine(scanner.Text())
		if !ok {
			continue
		}
		lines = append(lines, parsed)
	}
	return lines, nil
}

func parsePostingLine(line string) (postingLine, bool) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return postingLine{}, false
	}
	depth, err := strconv.Atoi(fields[3])
	if err != nil {
		return postingLine{}, false
	}
	freq, err := strconv.Atoi(fields[4])
	if err != nil {
		return postingLine{}, false
	}
	return postingLine{
		word:        fields[0],
		relevantURL: fields[1],
		originURL:   fields[2],
		depth:       depth,
		frequency:   freq,
	}, true
}
