package research

import "fmt"

// SearchError represents a failed web search.
type SearchError struct {
	Query   string
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search error for %q: %s: %v", e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("search error for %q: %s", e.Query, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}
