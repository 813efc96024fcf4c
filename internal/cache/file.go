package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonathan/contact-harvester/internal/schemas"
)

// DefaultFile is the cache file used when none is configured.
const DefaultFile = "cache.json"

// Store loads and saves the whole cache map.
type Store interface {
	Load(ctx context.Context) (map[string]Entry, error)
	Save(ctx context.Context, entries map[string]Entry) error
}

// FileStore keeps the cache as a JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing file is an empty cache. Each entry is validated
// and decoded on its own; entries that fail are left out and reported through a
// *SkippedEntriesError returned together with the rest.
func (s *FileStore) Load(_ context.Context) (map[string]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, &StoreError{Location: s.path, Message: "failed to read cache file", Cause: err}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &StoreError{Location: s.path, Message: "failed to decode cache file", Cause: err}
	}

	entries := make(map[string]Entry, len(raw))
	skipped := make(map[string]error)
	for company, value := range raw {
		entry, err := decodeEntry(value)
		if err != nil {
			skipped[company] = err
			continue
		}
		entries[company] = entry
	}

	if len(skipped) > 0 {
		return entries, &SkippedEntriesError{Location: s.path, Entries: skipped}
	}
	return entries, nil
}

func decodeEntry(value json.RawMessage) (Entry, error) {
	if err := schemas.ValidateCacheEntry(value); err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Save writes the full map atomically: temp file in the same directory, fsync, rename.
func (s *FileStore) Save(_ context.Context, entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return &StoreError{Location: s.path, Message: "failed to encode cache", Cause: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &StoreError{Location: s.path, Message: "failed to create temp file", Cause: err}
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &StoreError{Location: s.path, Message: "failed to write temp file", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &StoreError{Location: s.path, Message: "failed to sync temp file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &StoreError{Location: s.path, Message: "failed to close temp file", Cause: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return &StoreError{Location: s.path, Message: "failed to set permissions", Cause: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &StoreError{Location: s.path, Message: "failed to replace cache file", Cause: err}
	}
	return nil
}
