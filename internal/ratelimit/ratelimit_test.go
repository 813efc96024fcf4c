package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// slack absorbs float rounding inside the token bucket arithmetic.
const slack = time.Millisecond

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		expected time.Duration
	}{
		{"one per second", 1, time.Second},
		{"five per second", 5, 200 * time.Millisecond},
		{"half per second", 0.5, 2 * time.Second},
		{"zero disables", 0, 0},
		{"negative disables", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IntervalFor(tt.rps))
		})
	}
}

func TestDomainLimiter_SameDomainSpacing(t *testing.T) {
	interval := 80 * time.Millisecond
	limiter := NewDomainLimiterWithInterval(interval, zaptest.NewLogger(t))
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "acme.com"))
	first := time.Since(start)
	require.NoError(t, limiter.Wait(ctx, "acme.com"))
	second := time.Since(start)

	assert.Less(t, first, interval, "first request should not wait")
	assert.GreaterOrEqual(t, second-first, interval-slack)
}

func TestDomainLimiter_DifferentDomainsIndependent(t *testing.T) {
	interval := 500 * time.Millisecond
	limiter := NewDomainLimiterWithInterval(interval, nil)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "a.com"))
	require.NoError(t, limiter.Wait(ctx, "b.com"))
	require.NoError(t, limiter.Wait(ctx, "c.com"))

	assert.Less(t, time.Since(start), interval)
	assert.Equal(t, 3, limiter.Domains())
}

func TestDomainLimiter_ConcurrentSameDomain(t *testing.T) {
	interval := 40 * time.Millisecond
	limiter := NewDomainLimiterWithInterval(interval, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var releases []time.Duration
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Wait(ctx, "acme.com"))
			mu.Lock()
			releases = append(releases, time.Since(start))
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Four same-domain requests need at least three full intervals.
	sort.Slice(releases, func(i, j int) bool { return releases[i] < releases[j] })
	require.Len(t, releases, 4)
	assert.GreaterOrEqual(t, releases[3], 3*interval-slack)
	assert.Equal(t, 1, limiter.Domains())
}

func TestDomainLimiter_ContextCancelled(t *testing.T) {
	limiter := NewDomainLimiterWithInterval(time.Hour, nil)
	require.NoError(t, limiter.Wait(context.Background(), "acme.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme.com")
}

func TestDomainLimiter_ZeroIntervalNeverWaits(t *testing.T) {
	limiter := NewDomainLimiter(0, nil)
	assert.Equal(t, time.Duration(0), limiter.Interval())

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Wait(context.Background(), "acme.com"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 0, limiter.Domains())
}
