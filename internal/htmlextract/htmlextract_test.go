package htmlextract_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/htmlextract"
	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMetadataSink struct {
	errorEvents []string
}

func (m *mockMetadataSink) RecordFetch(string, int, time.Duration, string, int, int) {}
func (m *mockMetadataSink) RecordAssetFetch(string, int, time.Duration, int)         {}
func (m *mockMetadataSink) RecordError(
	_ time.Time,
	packageName string,
	_ string,
	_ metadata.ErrorCause,
	details string,
	_ []metadata.Attribute,
) {
	m.errorEvents = append(m.errorEvents, packageName+": "+details)
}
func (m *mockMetadataSink) RecordArtifact(metadata.ArtifactKind, string, []metadata.Attribute) {}

func baseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestExtract_StripsScriptAndStyle(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})
	body := []byte(`<html><head><style>body{color:red}</style></head>
		<body><script>alert('x')</script><p>Hello World</p></body></html>`)

	result, err := d.Extract(baseURL(t, "https://example.com/"), body)

	require.Nil(t, err)
	assert.NotContains(t, result.Tokens, "alert")
	assert.NotContains(t, result.Tokens, "color")
	assert.Equal(t, 1, result.Tokens["hello"])
	assert.Equal(t, 1, result.Tokens["world"])
}

func TestExtract_DecodesEntities(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})
	body := []byte(`<html><body><p>Fish &amp; Chips</p></body></html>`)

	result, err := d.Extract(baseURL(t, "https://example.com/"), body)

	require.Nil(t, err)
	assert.Equal(t, 1, result.Tokens["fish"])
	assert.Equal(t, 1, result.Tokens["chips"])
}

func TestExtract_DiscoversAndNormalizesLinks(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})
	body := []byte(`<html><body>
		<a href="/guide#intro">Guide</a>
		<a href="HTTPS://Example.com:443/guide">Guide again</a>
		<img src="/logo.png">
		<script src="/app.js"></script>
		<iframe src="/embed"></iframe>
		<a href="mailto:someone@example.com">mail</a>
	</body></html>`)

	result, err := d.Extract(baseURL(t, "https://example.com/docs/"), body)

	require.Nil(t, err)

	links := make([]string, len(result.Links))
	for i, l := range result.Links {
		links[i] = l.String()
	}

	assert.Contains(t, links, "https://example.com/guide")
	assert.Contains(t, links, "https://example.com/logo.png")
	assert.Contains(t, links, "https://example.com/app.js")
	assert.Contains(t, links, "https://example.com/embed")
	assert.NotContains(t, links, "mailto:someone@example.com")

	count := 0
	for _, l := range links {
		if l == "https://example.com/guide" {
			count++
		}
	}
	assert.Equal(t, 1, count, "duplicate link spellings must collapse to one entry")
}

func TestExtract_TokenizesIgnoringShortWords(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})
	body := []byte(`<html><body><p>a I am OK a Test test TEST</p></body></html>`)

	result, err := d.Extract(baseURL(t, "https://example.com/"), body)

	require.Nil(t, err)
	assert.NotContains(t, result.Tokens, "a")
	assert.NotContains(t, result.Tokens, "i")
	assert.Equal(t, 1, result.Tokens["am"])
	assert.Equal(t, 1, result.Tokens["ok"])
	assert.Equal(t, 3, result.Tokens["test"])
}

func TestExtract_MalformedMarkupNeverErrors(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})
	body := []byte(`<html><body><div><p>Unclosed tags galore<span>nested`)

	result, err := d.Extract(baseURL(t, "https://example.com/"), body)

	require.Nil(t, err)
	assert.Equal(t, 1, result.Tokens["unclosed"])
}

func TestExtract_EmptyBodyNeverErrors(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})

	result, err := d.Extract(baseURL(t, "https://example.com/"), []byte{})

	require.Nil(t, err)
	assert.Empty(t, result.Links)
	assert.Empty(t, result.Tokens)
}

func TestExtract_BinaryInputNeverErrors(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})
	body := []byte{0xff, 0xfe, 0x00, 0x01, 0x02, '<', '>', 0x80, 0x81}

	assert.NotPanics(t, func() {
		_, err := d.Extract(baseURL(t, "https://example.com/"), body)
		assert.Nil(t, err)
	})
}

func TestExtract_InvalidUTF8ReplacedNotDropped(t *testing.T) {
	d := htmlextract.NewDomExtractor(&mockMetadataSink{})
	body := append([]byte(`<html><body><p>Hello `), 0xff, 0xfe)
	body = append(body, []byte(`World</p></body></html>`)...)

	result, err := d.Extract(baseURL(t, "https://example.com/"), body)

	require.Nil(t, err)
	assert.Equal(t, 1, result.Tokens["hello"])
	assert.Equal(t, 1, result.Tokens["world"])
}
