package htmlextract

import (
	"bytes"
	"fmt"
	"net/url"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/internal/urlnorm"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse HTML into a DOM tree, tolerant of malformed markup
- Strip script/style noise
- Discover every outbound link worth following
- Tokenize the document's visible text for indexing

Unlike a "main content" extractor, this operates on the whole document: a
documentation crawler cannot assume a single canonical content container, so
every link and every word on the page is a candidate.

Content-Type is never consulted; bytes are decoded as UTF-8 with invalid
sequences replaced, regardless of what the server declared.
*/

// linkSource is a (tag, attribute) pair scanned for outbound links. Order is
// significant: it is the iteration order used to build Links, which keeps
// extraction deterministic instead of depending on goquery's internal
// traversal order for a given selector set.
type linkSource struct {
	tag  string
	attr string
}

var linkSources = []linkSource{
	{"a", "href"},
	{"img", "src"},
	{"script", "src"},
	{"iframe", "src"},
}

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(metadataSink metadata.MetadataSink) DomExtractor {
	return DomExtractor{
		metadataSink: metadataSink,
	}
}

// Extract parses body and returns every outbound link (normalized and
// de-duplicated) plus a lower-cased word-frequency table of the document's
// visible text. Malformed or non-HTML input does not produce an error: the
// tolerant parser degrades gracefully. A parser failure or a recovered panic
// is not propagated; it is returned as an empty result together with an
// ExtractionError.
func (d *DomExtractor) Extract(base url.URL, body []byte) (result ExtractionResult, classifiedErr failure.ClassifiedError) {
	defer func() {
		if rec := recover(); rec != nil {
			extractionErr := &ExtractionError{
				Message:   fmt.Sprintf("recovered from panic: %v", rec),
				Retryable: false,
				Cause:     ErrCausePanic,
			}
			d.recordError(base, extractionErr)
			result = ExtractionResult{}
			classifiedErr = extractionErr
		}
	}()

	return d.extract(base, body)
}

func (d *DomExtractor) extract(base url.URL, body []byte) (ExtractionResult, failure.ClassifiedError) {
	decoded := decodeUTF8(body)

	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		extractionErr := &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseMalformed,
		}
		d.recordError(base, extractionErr)
		return ExtractionResult{}, extractionErr
	}

	root := goquery.NewDocumentFromNode(doc)
	root.Find("script, style").Remove()

	links := discoverLinks(root, base)
	tokens := tokenize(root.Text())

	return ExtractionResult{Links: links, Tokens: tokens}, nil
}

func (d *DomExtractor) recordError(base url.URL, err *ExtractionError) {
	if d.metadataSink == nil {
		return
	}
	d.metadataSink.RecordError(
		time.Now(),
		"htmlextract",
		"DomExtractor.Extract",
		mapExtractionErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, base.String()),
		},
	)
}

// decodeUTF8 returns body unchanged if it is already valid UTF-8, otherwise
// re-encodes it rune by rune, substituting U+FFFD for invalid byte
// sequences. This happens regardless of any declared charset.
func decodeUTF8(body []byte) []byte {
	if utf8.Valid(body) {
		return body
	}

	var buf bytes.Buffer
	buf.Grow(len(body))
	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		buf.WriteRune(r)
		body = body[size:]
	}
	return buf.Bytes()
}

// discoverLinks scans linkSources in order and returns de-duplicated,
// normalized URLs in first-seen order.
func discoverLinks(doc *goquery.Document, base url.URL) []url.URL {
	seen := make(map[string]struct{})
	var links []url.URL

	for _, source := range linkSources {
		doc.Find(source.tag).Each(func(_ int, sel *goquery.Selection) {
			raw, exists := sel.Attr(source.attr)
			if !exists {
				return
			}

			normalized := urlnorm.Normalize(raw, &base)
			if normalized == nil {
				return
			}

			key := normalized.String()
			if _, ok := seen[key]; ok {
				return
			}
			seen[key] = struct{}{}
			links = append(links, *normalized)
		})
	}

	return links
}

// Tokenize is the exported form of the extractor's word-tokenization rule
// (maximal runs of Unicode letters, lower-cased, length >= 2), used by
// internal/search to tokenize a query identically to how documents are
// tokenized at index time.
func Tokenize(text string) map[string]int {
	return tokenize(text)
}

// tokenize walks text rune by rune, accumulating maximal runs of letters
// into lower-cased words. Words shorter than two letters are dropped as
// noise (single-letter "words" from stray punctuation splits).
func tokenize(text string) map[string]int {
	tokens := make(map[string]int)

	var word []rune
	flush := func() {
		if len(word) >= 2 {
			tokens[string(word)]++
		}
		word = word[:0]
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			word = append(word, unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}
