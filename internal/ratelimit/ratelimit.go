// Package ratelimit enforces a minimum interval between requests to the same domain.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-domain request rate used when none is configured.
const DefaultRequestsPerSecond = 5.0

// IntervalFor converts a request rate into the minimum spacing between requests.
// A non-positive rate disables spacing.
func IntervalFor(requestsPerSecond float64) time.Duration {
	if requestsPerSecond <= 0 || math.IsInf(requestsPerSecond, 1) {
		return 0
	}
	return time.Duration(float64(time.Second) / requestsPerSecond)
}

// DomainLimiter spaces requests per domain. Each domain gets its own limiter with a
// burst of one, so the first request is immediate and later ones queue at the interval.
// Safe for concurrent use; waiters on the same domain are released in reservation order.
type DomainLimiter struct {
	interval time.Duration
	limiters map[string]*rate.Limiter // domain -> limiter
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond to each domain.
func NewDomainLimiter(requestsPerSecond float64, logger *zap.Logger) *DomainLimiter {
	return NewDomainLimiterWithInterval(IntervalFor(requestsPerSecond), logger)
}

// NewDomainLimiterWithInterval creates a limiter with an explicit minimum interval.
func NewDomainLimiterWithInterval(interval time.Duration, logger *zap.Logger) *DomainLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < 0 {
		interval = 0
	}
	return &DomainLimiter{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
		logger:   logger,
	}
}

// Interval returns the configured minimum spacing.
func (l *DomainLimiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until a request to domain is permitted or ctx is done.
func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if l.interval == 0 {
		return ctx.Err()
	}
	limiter := l.limiterFor(domain)
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", domain, err)
	}
	return nil
}

// Domains returns the number of domains seen so far.
func (l *DomainLimiter) Domains() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}

// limiterFor gets or creates the limiter for a domain.
func (l *DomainLimiter) limiterFor(domain string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[domain]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Every(l.interval), 1)
	l.limiters[domain] = limiter

	l.logger.Debug("created rate limiter for domain",
		zap.String("domain", domain),
		zap.Duration("interval", l.interval))

	return limiter
}
