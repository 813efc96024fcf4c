package crawling

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/contact-harvester/internal/fetch"
	"github.com/jonathan/contact-harvester/internal/types"
)

// ContactPaths are visited after the homepage, in order.
var ContactPaths = []string{"/contact", "/contact-us", "/about", "/about-us", "/support", "/help"}

// Limiter spaces requests to a domain.
type Limiter interface {
	Wait(ctx context.Context, domain string) error
}

// PageFetcher retrieves a page body.
type PageFetcher interface {
	Get(ctx context.Context, url string) (*fetch.Result, error)
}

// PageStatus describes what happened to one crawled page.
type PageStatus string

const (
	PageOK         PageStatus = "ok"
	PageEmpty      PageStatus = "empty"
	PageFailed     PageStatus = "failed"
	PageNotText    PageStatus = "not_text"
	PageDisallowed PageStatus = "disallowed"
)

// PageReport records the outcome of a single page visit.
type PageReport struct {
	URL        string     `json:"url"`
	StatusCode int        `json:"status_code,omitempty"`
	Status     PageStatus `json:"status"`
	Emails     int        `json:"emails"`
	Error      string     `json:"error,omitempty"`
}

// SiteResult is the outcome of crawling one site.
type SiteResult struct {
	BaseURL string       `json:"base_url"`
	Domain  string       `json:"domain"`
	Emails  []string     `json:"emails"`
	Pages   []PageReport `json:"pages"`
}

// Options configures the site crawler.
type Options struct {
	RespectRobots bool
	UserAgent     string   // robots.txt group to match
	Paths         []string // defaults to ContactPaths
}

// SiteCrawler visits a homepage and a fixed list of contact pages, collecting emails.
type SiteCrawler struct {
	fetcher PageFetcher
	limiter Limiter
	opts    Options
	logger  *zap.Logger
}

// NewSiteCrawler creates a SiteCrawler.
func NewSiteCrawler(fetcher PageFetcher, limiter Limiter, opts *Options, logger *zap.Logger) *SiteCrawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Paths == nil {
		o.Paths = ContactPaths
	}
	if o.UserAgent == "" {
		o.UserAgent = fetch.DefaultUserAgent
	}
	return &SiteCrawler{
		fetcher: fetcher,
		limiter: limiter,
		opts:    o,
		logger:  logger,
	}
}

// Crawl fetches the homepage and each contact page of baseURL and returns the validated,
// deduplicated set of emails found. A failing page is recorded and skipped; only an invalid
// base URL or a cancelled context returns an error.
func (c *SiteCrawler) Crawl(ctx context.Context, baseURL string) (*SiteResult, error) {
	site, err := types.NewSite(baseURL)
	if err != nil {
		return nil, &CrawlError{
			URL:     baseURL,
			Message: "invalid base URL",
			Cause:   err,
		}
	}

	logger := c.logger.With(zap.String("domain", site.Domain))

	rules := allowAll
	if c.opts.RespectRobots {
		rules, err = c.loadRobots(ctx, site, logger)
		if err != nil {
			return nil, err
		}
	}

	pages := make([]string, 0, len(c.opts.Paths)+1)
	pages = append(pages, site.BaseURL)
	for _, path := range c.opts.Paths {
		pages = append(pages, site.PageURL(path))
	}

	found := make(map[string]bool)
	result := &SiteResult{
		BaseURL: site.BaseURL,
		Domain:  site.Domain,
		Pages:   make([]PageReport, 0, len(pages)),
	}

	for _, pageURL := range pages {
		if !rules.allowed(pageURL) {
			logger.Debug("page disallowed by robots.txt", zap.String("url", pageURL))
			result.Pages = append(result.Pages, PageReport{URL: pageURL, Status: PageDisallowed})
			continue
		}

		report, emails, err := c.crawlPage(ctx, site, pageURL, logger)
		if err != nil {
			return nil, err
		}
		for _, email := range emails {
			found[email] = true
		}
		result.Pages = append(result.Pages, report)
	}

	emails := make([]string, 0, len(found))
	for email := range found {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	result.Emails = FilterValid(emails)

	logger.Info("site crawled",
		zap.Int("pages", len(result.Pages)),
		zap.Int("emails", len(result.Emails)))

	return result, nil
}

// crawlPage fetches and mines one page. The returned error is non-nil only when ctx is done.
func (c *SiteCrawler) crawlPage(ctx context.Context, site types.Site, pageURL string, logger *zap.Logger) (PageReport, []string, error) {
	report := PageReport{URL: pageURL}

	if err := c.limiter.Wait(ctx, site.Domain); err != nil {
		return report, nil, c.abort(ctx, site, err)
	}

	page, err := c.fetcher.Get(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return report, nil, c.abort(ctx, site, err)
		}
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) {
			report.StatusCode = fetchErr.StatusCode
		}
		logger.Warn("page fetch failed", zap.String("url", pageURL), zap.Error(err))
		report.Status = PageFailed
		report.Error = err.Error()
		return report, nil, nil
	}

	report.StatusCode = page.StatusCode
	if !page.IsText {
		logger.Debug("skipping non-text page", zap.String("url", pageURL), zap.String("mime", page.MIME))
		report.Status = PageNotText
		return report, nil, nil
	}

	extraction := ExtractEmails(page.HTML)
	switch extraction.Status {
	case ExtractionFailed:
		logger.Warn("page extraction failed", zap.String("url", pageURL), zap.Error(extraction.Err))
		report.Status = PageFailed
		report.Error = extraction.Err.Error()
		return report, nil, nil
	case ExtractionEmpty:
		report.Status = PageEmpty
	default:
		report.Status = PageOK
	}
	if len(extraction.Skipped) > 0 {
		logger.Debug("skipped invalid mailto targets",
			zap.String("url", pageURL),
			zap.Strings("targets", extraction.Skipped))
	}

	report.Emails = len(extraction.Emails)
	return report, extraction.Emails, nil
}

func (c *SiteCrawler) abort(ctx context.Context, site types.Site, err error) error {
	cause := ctx.Err()
	if cause == nil {
		cause = err
	}
	return &CrawlError{
		URL:     site.BaseURL,
		Message: "crawl aborted",
		Cause:   cause,
	}
}
