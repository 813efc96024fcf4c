package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Verifier confirms that a URL is live.
type Verifier interface {
	Verify(ctx context.Context, url string) error
}

// ResolverOptions configures website resolution.
type ResolverOptions struct {
	// GuessFallback tries CandidateURLs when search finds nothing verifiable.
	GuessFallback bool
}

// Resolver finds and verifies the official website of a company.
type Resolver struct {
	searcher      Searcher
	verifier      Verifier
	guessFallback bool
	logger        *zap.Logger
}

// NewResolver creates a Resolver. A nil searcher skips the search step.
func NewResolver(searcher Searcher, verifier Verifier, opts *ResolverOptions, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		searcher: searcher,
		verifier: verifier,
		logger:   logger,
	}
	if opts != nil {
		r.guessFallback = opts.GuessFallback
	}
	return r
}

// SearchQuery is the query used to find a company's website.
func SearchQuery(companyName string) string {
	return fmt.Sprintf("%s official website", companyName)
}

// Resolve returns a verified base URL for companyName. Search and verification
// failures are logged and reported as absent.
func (r *Resolver) Resolve(ctx context.Context, companyName string) (string, bool) {
	logger := r.logger.With(zap.String("company", companyName))

	if link, ok := r.search(ctx, companyName, logger); ok {
		err := r.verifier.Verify(ctx, link)
		if err == nil {
			logger.Debug("website verified", zap.String("url", link))
			return link, true
		}
		logger.Info("search result failed verification", zap.String("url", link), zap.Error(err))
	}

	if !r.guessFallback {
		return "", false
	}

	for _, candidate := range CandidateURLs(companyName) {
		if ctx.Err() != nil {
			return "", false
		}
		if err := r.verifier.Verify(ctx, candidate); err != nil {
			logger.Debug("candidate rejected", zap.String("url", candidate), zap.Error(err))
			continue
		}
		logger.Info("website guessed from name", zap.String("url", candidate))
		return candidate, true
	}

	return "", false
}

func (r *Resolver) search(ctx context.Context, companyName string, logger *zap.Logger) (string, bool) {
	if r.searcher == nil {
		return "", false
	}

	results, err := r.searcher.Search(ctx, SearchQuery(companyName), 1)
	if err != nil {
		logger.Warn("website search failed", zap.Error(err))
		return "", false
	}
	if len(results) == 0 {
		logger.Info("no search results")
		return "", false
	}

	link := NormalizeLink(results[0].Link)
	if link == "" {
		logger.Warn("search result has empty link")
		return "", false
	}
	return link, true
}

// NormalizeLink prefixes https:// unless the link already carries an http(s) scheme.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + link
}
