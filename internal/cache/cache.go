package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a cached entry stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

// ResultsCache is the in-memory view of a Store. Every Set persists the full map.
// All methods are safe for concurrent use; concurrent Sets are serialized and the last writer wins.
type ResultsCache struct {
	mu      sync.Mutex
	store   Store
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// Open loads the store. A store that cannot be loaded is logged and treated as empty;
// entries a store skipped are logged and the rest are kept. A ttl of zero or less
// makes every entry stale.
func Open(ctx context.Context, store Store, ttl time.Duration, logger *zap.Logger) *ResultsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl < 0 {
		ttl = 0
	}

	entries, err := store.Load(ctx)
	var skipped *SkippedEntriesError
	switch {
	case errors.As(err, &skipped):
		for _, company := range skipped.Companies() {
			logger.Warn("skipping unreadable cache entry",
				zap.String("company", company),
				zap.Error(skipped.Entries[company]))
		}
	case err != nil:
		logger.Warn("cache unreadable, starting empty", zap.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}

	logger.Debug("cache loaded", zap.Int("entries", len(entries)), zap.Duration("ttl", ttl))

	return &ResultsCache{
		store:   store,
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// TTL returns the freshness window.
func (c *ResultsCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached emails for company if a fresh entry exists.
func (c *ResultsCache) Get(company string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[company]
	if !ok || !entry.Fresh(c.now(), c.ttl) {
		return nil, false
	}
	return append([]string{}, entry.Emails...), true
}

// Lookup returns the raw entry for company regardless of freshness.
func (c *ResultsCache) Lookup(company string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[company]
	if !ok {
		return Entry{}, false
	}
	return NewEntry(entry.Emails, entry.Timestamp.Time), true
}

// Set replaces the entry for company, stamped now, and persists the whole cache.
// The in-memory entry is kept even when persisting fails.
func (c *ResultsCache) Set(ctx context.Context, company string, emails []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[company] = NewEntry(emails, c.now())
	return c.store.Save(ctx, c.entries)
}

// Companies returns every cached company name, sorted.
func (c *ResultsCache) Companies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsFresh reports whether entry would be served by Get right now.
func (c *ResultsCache) IsFresh(entry Entry) bool {
	return entry.Fresh(c.now(), c.ttl)
}
