// Package report writes harvest rows as CSV, XLSX, or JSON.
package report

import "fmt"

// FormatError represents an unknown or unsupported output format
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported report format %q (want csv, xlsx, or json)", e.Format)
}

// WriteError represents a failure encoding or persisting a report
type WriteError struct {
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("report error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("report error: %s", e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
