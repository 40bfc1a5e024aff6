// Package snippet generates short, human-readable excerpts of a fetched
// page for job logs and operator diagnostics. It is purely additive: no
// spec.md posting, status, or search field depends on it, and a failure to
// generate one never affects crawl control flow.
package snippet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"golang.org/x/net/html"
)

// maxRunes bounds how much of the converted markdown survives into the
// excerpt, keeping a job's log ring from being dominated by page bodies.
const maxRunes = 280

// GenerationError reports a failed excerpt attempt. It is always
// Recoverable: the caller already has the page's links and tokens, so a
// broken excerpt never needs to retry or abort anything.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("snippet generation error: %s", e.Message)
}

func (e *GenerationError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// FromHTML converts body to markdown and returns the first maxRunes of it,
// trimmed at a rune boundary with an ellipsis if truncated.
func FromHTML(body []byte) (string, failure.ClassifiedError) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Message: err.Error()}
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)

	markdown, err := conv.ConvertNode(doc)
	if err != nil {
		return "", &GenerationError{Message: err.Error()}
	}

	return truncate(collapseWhitespace(string(markdown)), maxRunes), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
