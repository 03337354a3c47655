package serverutils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := NewRateLimiter(5, time.Hour)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("user-a"), "request %d should be admitted", i+1)
	}
	assert.False(t, limiter.Allow("user-a"), "request over the limit should be rejected")
}

func TestRateLimiterIsolatesKeys(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour)

	assert.True(t, limiter.Allow("user-a"))
	assert.False(t, limiter.Allow("user-a"))
	assert.True(t, limiter.Allow("user-b"))
}

func TestRateLimiterConcurrentFirstRequests(t *testing.T) {
	limiter := NewRateLimiter(5, time.Hour)

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("user-a") {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), admitted, "racing first requests must not create extra capacity")
}

func TestRateLimiterSubSecondWindow(t *testing.T) {
	limiter := NewRateLimiter(2, 200*time.Millisecond)

	assert.True(t, limiter.Allow("user-a"))
	assert.True(t, limiter.Allow("user-a"))
	assert.False(t, limiter.Allow("user-a"))

	// A new window admits again.
	time.Sleep(250 * time.Millisecond)
	assert.True(t, limiter.Allow("user-a"))
}
