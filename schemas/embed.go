// Package schemas holds the JSON Schemas for the contact harvester's persisted artifacts.
package schemas

import _ "embed"

// CacheEntry describes one value of the results cache file.
//
//go:embed cache_entry.schema.json
var CacheEntry string

// Rows describes the JSON report written by the harvester.
//
//go:embed rows.schema.json
var Rows string
