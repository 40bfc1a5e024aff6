package limiter_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/docs-crawler/pkg/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_AcquireSucceedsImmediatelyFirstTime(t *testing.T) {
	l := limiter.NewTokenBucketLimiter()
	l.Init(10, 1)
	defer l.Close()

	cancel := make(chan struct{})
	start := time.Now()
	ok := l.Acquire(cancel)
	elapsed := time.Since(start)

	require.True(t, ok)
	assert.Less(t, elapsed, 50*time.Millisecond)
}

func TestTokenBucketLimiter_RefillsAtHitRate(t *testing.T) {
	l := limiter.NewTokenBucketLimiter()
	l.Init(20, 1) // one token every 50ms
	defer l.Close()

	cancel := make(chan struct{})
	require.True(t, l.Acquire(cancel))

	start := time.Now()
	require.True(t, l.Acquire(cancel))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestTokenBucketLimiter_AcquireCancellable(t *testing.T) {
	l := limiter.NewTokenBucketLimiter()
	l.Init(0.1, 1) // one token every 10s — long enough to exercise cancel
	defer l.Close()

	cancel := make(chan struct{})
	require.True(t, l.Acquire(cancel)) // consumes the initial token

	done := make(chan bool, 1)
	go func() {
		done <- l.Acquire(cancel)
	}()

	time.Sleep(20 * time.Millisecond)
	close(cancel)

	select {
	case ok := <-done:
		assert.False(t, ok, "expected Acquire to return false on cancellation")
	case <-time.After(1 * time.Second):
		t.Fatal("Acquire did not observe cancellation")
	}
}

func TestTokenBucketLimiter_NoBurstBeyondCapacityOne(t *testing.T) {
	l := limiter.NewTokenBucketLimiter()
	l.Init(1000, 1) // refill every 1ms; several intervals elapse below
	defer l.Close()

	time.Sleep(20 * time.Millisecond)

	cancel := make(chan struct{})
	require.True(t, l.Acquire(cancel))

	// A second immediate Acquire must not also succeed instantly: the bucket
	// never stockpiles more than one token regardless of elapsed intervals.
	start := time.Now()
	require.True(t, l.Acquire(cancel))
	assert.Greater(t, time.Since(start), time.Duration(0))
}

func TestTokenBucketLimiter_BackoffIncreasesDelay(t *testing.T) {
	l := limiter.NewTokenBucketLimiter()
	l.Init(10, 42)
	defer l.Close()

	assert.Equal(t, time.Duration(0), l.BackoffDelay("example.com"))

	l.Backoff("example.com")
	first := l.BackoffDelay("example.com")
	assert.Greater(t, first, time.Duration(0))

	l.Backoff("example.com")
	second := l.BackoffDelay("example.com")
	assert.Greater(t, second, first-time.Second) // allow for jitter noise, but should trend upward

	l.ResetBackoff("example.com")
	assert.Equal(t, time.Duration(0), l.BackoffDelay("example.com"))
}

func TestTokenBucketLimiter_BackoffIsPerHost(t *testing.T) {
	l := limiter.NewTokenBucketLimiter()
	l.Init(10, 7)
	defer l.Close()

	l.Backoff("a.example.com")
	assert.Greater(t, l.BackoffDelay("a.example.com"), time.Duration(0))
	assert.Equal(t, time.Duration(0), l.BackoffDelay("b.example.com"))
}
