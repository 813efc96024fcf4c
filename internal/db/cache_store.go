package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/contact-harvester/internal/cache"
)

// CacheStore implements cache.Store on the cached_results table.
type CacheStore struct {
	db *DB
}

// NewCacheStore creates a CacheStore.
func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db}
}

// Load reads every cached entry.
func (s *CacheStore) Load(ctx context.Context) (map[string]cache.Entry, error) {
	rows, err := s.db.pool.Query(ctx, `SELECT company, emails, cached_at FROM cached_results`)
	if err != nil {
		return nil, &cache.StoreError{Location: "cached_results", Message: "failed to query cache", Cause: err}
	}
	defer rows.Close()

	entries := make(map[string]cache.Entry)
	for rows.Next() {
		var (
			company  string
			emails   []string
			cachedAt time.Time
		)
		if err := rows.Scan(&company, &emails, &cachedAt); err != nil {
			return nil, &cache.StoreError{Location: "cached_results", Message: "failed to scan cache row", Cause: err}
		}
		entries[company] = cache.NewEntry(emails, cachedAt)
	}
	if err := rows.Err(); err != nil {
		return nil, &cache.StoreError{Location: "cached_results", Message: "failed to read cache rows", Cause: err}
	}
	return entries, nil
}

// Save upserts every entry in a single transaction.
func (s *CacheStore) Save(ctx context.Context, entries map[string]cache.Entry) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return &cache.StoreError{Location: "cached_results", Message: "failed to begin transaction", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for company, entry := range entries {
		emails := entry.Emails
		if emails == nil {
			emails = []string{}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO cached_results (company, emails, cached_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (company) DO UPDATE SET emails = $2, cached_at = $3`,
			company, emails, entry.Timestamp.Time,
		)
		if err != nil {
			return &cache.StoreError{
				Location: "cached_results",
				Message:  fmt.Sprintf("failed to upsert %q", company),
				Cause:    err,
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &cache.StoreError{Location: "cached_results", Message: "failed to commit", Cause: err}
	}
	return nil
}
