package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/hashutil"
	"github.com/rohmanhakim/docs-crawler/pkg/limiter"
	"github.com/rohmanhakim/docs-crawler/pkg/retry"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Handle redirects safely
- Classify responses

Fetch Semantics

- Content is read and returned regardless of the declared Content-Type;
  classification of what to do with the bytes is the caller's job.
- Redirect chains are bounded by the configured http.Client.
- All responses are logged with metadata.
- A TLS certificate verification failure is retried exactly once with
  certificate verification disabled, so a job can still reach sites with
  broken or self-signed certificate chains.

The fetcher never parses content; it only returns bytes and metadata.
*/

type HtmlFetcher struct {
	metadataSink   metadata.MetadataSink
	httpClient     *http.Client
	insecureClient *http.Client
	userAgent      string
	rateLimiter    limiter.RateLimiter
}

func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
) HtmlFetcher {
	return HtmlFetcher{
		metadataSink: metadataSink,
	}
}

// SetRateLimiter wires a per-host backoff tracker into the fetcher: a
// 429/5xx response bumps the offending host's exponential backoff delay,
// which subsequent attempts against that host wait out before the next
// request, and a successful fetch clears it. Optional — a fetcher with no
// rate limiter attached simply never backs off.
func (h *HtmlFetcher) SetRateLimiter(l limiter.RateLimiter) {
	h.rateLimiter = l
}

// Init wires the HTTP client and user agent used for subsequent fetches.
// It also derives an insecure client sharing the same transport timeout,
// used only for the single certificate-verification-failure retry.
func (h *HtmlFetcher) Init(httpClient *http.Client, userAgent string) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	h.httpClient = httpClient
	h.userAgent = userAgent
	h.insecureClient = &http.Client{
		Timeout:       httpClient.Timeout,
		CheckRedirect: httpClient.CheckRedirect,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
}

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	crawlDepth int,
	fetchUrl url.URL,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	retryResult := h.fetchWithRetry(ctx, fetchUrl, h.userAgent, retryParam)

	duration := time.Since(startTime)
	err := retryResult.Err()
	retryCount := retryResult.Attempts()

	var statusCode int
	var contentType string
	if err == nil {
		result := retryResult.Value()
		statusCode = result.Code()
		contentType = h.extractContentType(result.Headers())
		h.recordFingerprint(fetchUrl, result.Body())
	}

	h.metadataSink.RecordFetch(
		fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		retryCount,
		crawlDepth,
	)

	if err != nil {
		// Use errors.Is to decide between FetchError or RetryError
		if errors.Is(err, &retry.RetryError{}) {
			h.recordRetryError(callerMethod, fetchUrl, err)
		} else {
			h.recordFetchError(callerMethod, fetchUrl, err)
		}

		return FetchResult{}, err
	}

	return retryResult.Value(), nil
}

// recordFingerprint hashes the fetched body with blake3 and records it as
// a diagnostic artifact, the same way the Registry fingerprints job ids.
// A hashing failure is not possible for in-memory bytes, but is logged
// rather than ignored on the off chance the algorithm name ever drifts.
func (h *HtmlFetcher) recordFingerprint(fetchUrl url.URL, body []byte) {
	sum, err := hashutil.HashBytes(body, hashutil.HashAlgoBLAKE3)
	if err != nil {
		h.metadataSink.RecordError(time.Now(), "fetcher", "recordFingerprint", metadata.CauseUnknown, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, fetchUrl.String())})
		return
	}
	h.metadataSink.RecordArtifact(metadata.ArtifactFingerprint, fetchUrl.String(), []metadata.Attribute{
		metadata.NewAttr(metadata.AttrHash, sum),
	})
}

func (h *HtmlFetcher) extractContentType(headers map[string]string) string {
	if ct, ok := headers["Content-Type"]; ok {
		return ct
	}
	return ""
}

func (h *HtmlFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		// record fetch error event
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HtmlFetcher) recordRetryError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		// record retry error event
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseRetryFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Error()),
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

// fetchWithRetry drives performFetch through retry.Retry. If an attempt
// fails with a TLS certificate verification error, the next attempt is
// made with certificate verification disabled. When a rate limiter is
// attached, each attempt first waits out any backoff delay already
// accumulated for fetchUrl's host, then records a fresh backoff on a
// 429/5xx response or clears it on success.
func (h *HtmlFetcher) fetchWithRetry(ctx context.Context, fetchUrl url.URL, userAgent string, retryParam retry.RetryParam) retry.Result[FetchResult] {
	sslFailedOnce := false
	host := fetchUrl.Hostname()

	fetchTask := func(attempt int) (FetchResult, failure.ClassifiedError) {
		client := h.httpClient
		if sslFailedOnce {
			client = h.insecureClient
		}

		h.waitOutBackoff(ctx, host)

		result, err := h.performFetch(ctx, client, fetchUrl, userAgent)
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) {
				if fetchErr.Cause == ErrCauseSSLFailure {
					sslFailedOnce = true
				}
				if h.rateLimiter != nil && (fetchErr.Cause == ErrCauseRequest5xx || fetchErr.Cause == ErrCauseRequestTooMany) {
					h.rateLimiter.Backoff(host)
				}
			}
		} else if h.rateLimiter != nil {
			h.rateLimiter.ResetBackoff(host)
		}
		return result, err
	}

	return retry.Retry(retryParam, fetchTask)
}

// waitOutBackoff blocks until host's accumulated backoff delay has elapsed
// or ctx is cancelled, whichever comes first. A no-op when no rate limiter
// is attached or the host has no outstanding backoff.
func (h *HtmlFetcher) waitOutBackoff(ctx context.Context, host string) {
	if h.rateLimiter == nil {
		return
	}
	delay := h.rateLimiter.BackoffDelay(host)
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (h *HtmlFetcher) performFetch(ctx context.Context, client *http.Client, fetchUrl url.URL, userAgent string) (FetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	// Apply browser-like headers
	headers := requestHeaders(userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		if isSSLError(err) {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("tls verification failed: %v", err),
				Retryable: true,
				Cause:     ErrCauseSSLFailure,
			}
		}
		// Network/transport errors are retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	// Handle HTTP status codes
	switch {
	case resp.StatusCode >= 500:
		// Server errors (5xx) are retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable: true,
			Cause:     ErrCauseRequest5xx,
		}

	case resp.StatusCode == 429:
		// Too Many Requests is retryable
		return FetchResult{}, &FetchError{
			Message:   "rate limited (429)",
			Retryable: true,
			Cause:     ErrCauseRequestTooMany,
		}

	case resp.StatusCode == 403:
		// Forbidden is not retryable
		return FetchResult{}, &FetchError{
			Message:   "access forbidden (403)",
			Retryable: false,
			Cause:     ErrCauseRequestPageForbidden,
		}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Other client errors are not retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRequestPageForbidden,
		}

	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		// Redirects should be handled by http.Client, but if we get here,
		// it means redirect limit exceeded
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("redirect error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
		}
	}

	// Read response body. Content-Type is never inspected here: bytes are
	// returned regardless of what the server claims, and tokenization decides
	// downstream whether they are usable.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	// Build response headers map
	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	// Create FetchResult
	result := FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			responseHeaders: responseHeaders,
		},
	}

	return result, nil
}

// isSSLError reports whether err originates from a TLS certificate
// verification failure, as opposed to a generic network failure.
func isSSLError(err error) bool {
	var certVerifyErr *tls.CertificateVerificationError
	if errors.As(err, &certVerifyErr) {
		return true
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &certInvalidErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "certificate") || strings.Contains(msg, "x509")
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Accept-Encoding": "gzip, deflate, br",
		"DNT":             "1",
		"Connection":      "keep-alive",
	}
}
