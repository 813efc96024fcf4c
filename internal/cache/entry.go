// Package cache persists harvested emails per company with a freshness window.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayout writes microsecond precision with an explicit offset.
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

// legacyLayouts are offset-free ISO timestamps, interpreted in local time.
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a time that round-trips through ISO-8601 strings, including naive ones.
type Timestamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(timestampLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp accepts RFC 3339 and offset-free ISO-8601 timestamps.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed, nil
	}
	for _, layout := range legacyLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// Entry is the cached outcome for one company.
type Entry struct {
	Emails    []string  `json:"emails"`
	Timestamp Timestamp `json:"timestamp"`
}

// NewEntry creates an entry stamped at now. The emails slice is copied.
func NewEntry(emails []string, now time.Time) Entry {
	return Entry{
		Emails:    append([]string{}, emails...),
		Timestamp: Timestamp{Time: now},
	}
}

// Fresh reports whether the entry is younger than ttl at now. A non-positive ttl is never fresh.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.Timestamp.Time) < ttl
}
