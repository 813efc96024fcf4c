// Package research locates a company's official website.
package research

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// SearchResult is a single web search hit.
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Searcher runs a web search and returns results in rank order.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]SearchResult, error)
}

// CustomSearch adapts Google Custom Search to Searcher.
type CustomSearch struct {
	svc *customsearch.Service
	cx  string
}

// NewCustomSearch creates a CustomSearch for the given API key and engine id.
// Extra client options are appended after the API key.
func NewCustomSearch(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*CustomSearch, error) {
	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &CustomSearch{
		svc: svc,
		cx:  cx,
	}, nil
}

// Search returns up to num results for query. A non-positive num uses the API default.
func (s *CustomSearch) Search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	call := s.svc.Cse.List().Cx(s.cx).Q(query).Context(ctx)
	if num > 0 {
		call = call.Num(int64(num))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, &SearchError{
			Query:   query,
			Message: "search request failed",
			Cause:   err,
		}
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil {
			continue
		}
		results = append(results, SearchResult{
			Title: item.Title,
			Link:  item.Link,
		})
	}
	return results, nil
}
