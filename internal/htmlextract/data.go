package htmlextract

import "net/url"

// ExtractionResult holds the outbound links and word-frequency tokens found
// in a document. Links are de-duplicated (set semantics); Tokens maps a
// lower-cased word to its raw occurrence count within the document.
type ExtractionResult struct {
	Links  []url.URL
	Tokens map[string]int
}
