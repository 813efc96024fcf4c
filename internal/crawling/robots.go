package crawling

import (
	"context"
	"net/url"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/jonathan/contact-harvester/internal/types"
)

// robotsRules answers whether a URL may be crawled. A nil group allows everything.
type robotsRules struct {
	group *robotstxt.Group
}

var allowAll = robotsRules{}

func (r robotsRules) allowed(pageURL string) bool {
	if r.group == nil {
		return true
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return r.group.Test(path)
}

// loadRobots fetches /robots.txt from the site root. Any failure other than
// cancellation yields allow-all rules.
func (c *SiteCrawler) loadRobots(ctx context.Context, site types.Site, logger *zap.Logger) (robotsRules, error) {
	base, err := url.Parse(site.BaseURL)
	if err != nil {
		return allowAll, nil
	}
	robotsURL := (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/robots.txt"}).String()

	if err := c.limiter.Wait(ctx, site.Domain); err != nil {
		return allowAll, c.abort(ctx, site, err)
	}

	page, err := c.fetcher.Get(ctx, robotsURL)
	if err != nil {
		if ctx.Err() != nil {
			return allowAll, c.abort(ctx, site, err)
		}
		logger.Debug("robots.txt unavailable", zap.String("url", robotsURL), zap.Error(err))
		return allowAll, nil
	}

	data, err := robotstxt.FromStatusAndString(page.StatusCode, page.HTML)
	if err != nil {
		logger.Debug("robots.txt unparseable", zap.String("url", robotsURL), zap.Error(err))
		return allowAll, nil
	}
	if page.StatusCode >= 500 {
		// robotstxt treats 5xx as disallow-all; an unreadable file allows everything here.
		return allowAll, nil
	}
	return robotsRules{group: data.FindGroup(c.opts.UserAgent)}, nil
}
