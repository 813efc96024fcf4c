// Package crawling extracts contact email addresses from company websites.
package crawling

import "fmt"

// CrawlError represents a failure that prevents a site from being crawled at all.
type CrawlError struct {
	URL     string
	Message string
	Cause   error
}

func (e *CrawlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crawl error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("crawl error for %s: %s", e.URL, e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}

// ExtractionError represents a failure to parse a page for email extraction.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
