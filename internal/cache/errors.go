package cache

import (
	"fmt"
	"sort"
	"strings"
)

// StoreError represents a failure reading or writing a cache store.
type StoreError struct {
	Location string
	Message  string
	Cause    error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache store %s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("cache store %s: %s", e.Location, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// SkippedEntriesError reports entries that could not be decoded. A store returns it
// alongside the entries it did load.
type SkippedEntriesError struct {
	Location string
	Entries  map[string]error
}

func (e *SkippedEntriesError) Error() string {
	return fmt.Sprintf("cache store %s: skipped %d unreadable entries: %s",
		e.Location, len(e.Entries), strings.Join(e.Companies(), ", "))
}

// Companies returns the skipped company names, sorted.
func (e *SkippedEntriesError) Companies() []string {
	names := make([]string, 0, len(e.Entries))
	for name := range e.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
