package limiter

import "time"

// hostBackoff tracks exponential backoff state for a single host, layered
// under the token bucket to further slow a host that is answering with
// 429/5xx on top of the job's configured hit rate.
type hostBackoff struct {
	count int
	delay time.Duration
}
