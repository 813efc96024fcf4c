// Package types provides type definitions for structured data used throughout the contact harvester.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"sort"
	"strings"
)

// Outcome classifies the result of harvesting one company.
type Outcome string

const (
	OutcomeEmails    Outcome = "emails"     // One or more valid emails found
	OutcomeNoWebsite Outcome = "no_website" // Resolution produced no verified URL
	OutcomeNotFound  Outcome = "not_found"  // Site crawled, no emails survived filtering
	OutcomeError     Outcome = "error"      // Unexpected failure while processing the company
)

// Status strings used in report rows
const (
	StatusNoWebsite = "No website found"
	StatusNotFound  = "Not found"
	StatusErrorFmt  = "Error: "
)

// EmailSeparator joins emails in a report row.
const EmailSeparator = ", "

// CompanyResult is the outcome for a single input company.
// Exactly one of Emails (non-empty), no website, not found, or Error holds.
type CompanyResult struct {
	Company string   `json:"company"`
	Outcome Outcome  `json:"outcome"`
	Emails  []string `json:"emails,omitempty"`
	Website string   `json:"website,omitempty"`
	Error   string   `json:"error,omitempty"`
	Cached  bool     `json:"cached"`
}

// EmailsResult builds a result carrying emails. Emails are copied and sorted.
func EmailsResult(company string, emails []string, website string, cached bool) CompanyResult {
	sorted := append([]string(nil), emails...)
	sort.Strings(sorted)
	return CompanyResult{
		Company: company,
		Outcome: OutcomeEmails,
		Emails:  sorted,
		Website: website,
		Cached:  cached,
	}
}

// NoWebsiteResult builds a result for a company whose website could not be resolved.
func NoWebsiteResult(company string) CompanyResult {
	return CompanyResult{Company: company, Outcome: OutcomeNoWebsite}
}

// NotFoundResult builds a result for a crawled site with no usable emails.
func NotFoundResult(company, website string) CompanyResult {
	return CompanyResult{Company: company, Outcome: OutcomeNotFound, Website: website}
}

// ErrorResult builds a result for a company whose processing failed.
func ErrorResult(company string, message string) CompanyResult {
	return CompanyResult{Company: company, Outcome: OutcomeError, Error: message}
}

// Display renders the result the way it appears in the Emails column of a report.
func (r CompanyResult) Display() string {
	switch r.Outcome {
	case OutcomeEmails:
		return strings.Join(r.Emails, EmailSeparator)
	case OutcomeNoWebsite:
		return StatusNoWebsite
	case OutcomeNotFound:
		return StatusNotFound
	default:
		return StatusErrorFmt + r.Error
	}
}

// Row converts the result into a report row.
func (r CompanyResult) Row() Row {
	return Row{Company: r.Company, Emails: r.Display()}
}

// Row is one line of harvest output.
type Row struct {
	Company string `json:"Company"`
	Emails  string `json:"Emails"`
}

// Rows converts results into report rows, preserving order.
func Rows(results []CompanyResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, r.Row())
	}
	return rows
}

// Summary counts results by outcome.
type Summary struct {
	Total     int `json:"total"`
	WithEmail int `json:"with_email"`
	Cached    int `json:"cached"`
	NoWebsite int `json:"no_website"`
	NotFound  int `json:"not_found"`
	Errors    int `json:"errors"`
}

// Summarize tallies a slice of results.
func Summarize(results []CompanyResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeEmails:
			s.WithEmail++
			if r.Cached {
				s.Cached++
			}
		case OutcomeNoWebsite:
			s.NoWebsite++
		case OutcomeNotFound:
			s.NotFound++
		case OutcomeError:
			s.Errors++
		}
	}
	return s
}
