// Package index implements the Word Index Writer (C7): postings grouped by
// word[0] and appended to storage/{letter}.data shard files. There is no
// compaction and no dedup — two crawls of the same page produce two posting
// lines, and the Search Engine's ranking accounts for that.
package index

import "fmt"

// Posting is one occurrence of a word on a fetched page: the word itself,
// the URL it was found on, the crawl's origin URL, the discovery depth, and
// how many times the word occurred on that page.
type Posting struct {
	Word        string
	RelevantURL string
	OriginURL   string
	Depth       int
	Frequency   int
}

// Line renders a posting as the single space-separated line spec.md §4.4
// and §6 require: "{word} {relevant_url} {origin_url} {depth} {freq}".
func (p Posting) Line() string {
	return fmt.Sprintf("%s %s %s %d %d", p.Word, p.RelevantURL, p.OriginURL, p.Depth, p.Frequency)
}

// ShardLetter returns the shard-file stem for word: its lowercase first
// rune, or "u" + the hex code point for any rune that isn't a plain ASCII
// letter (spec.md §6: "for non-ASCII letters use the Unicode code point in
// hex prefixed with u").
func ShardLetter(word string) string {
	r := []rune(word)
	if len(r) == 0 {
		return "u0"
	}
	first := r[0]
	if first >= 'a' && first <= 'z' {
		return string(first)
	}
	if first >= 'A' && first <= 'Z' {
		return string(first + ('a' - 'A'))
	}
	return fmt.Sprintf("u%04x", first)
}
