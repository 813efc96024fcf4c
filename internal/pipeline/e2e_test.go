package pipeline

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/contact-harvester/internal/cache"
	"github.com/jonathan/contact-harvester/internal/crawling"
	"github.com/jonathan/contact-harvester/internal/fetch"
	"github.com/jonathan/contact-harvester/internal/ratelimit"
	"github.com/jonathan/contact-harvester/internal/research"
	"github.com/jonathan/contact-harvester/internal/types"
)

type staticSearcher struct {
	links map[string]string // query -> link
}

func (s staticSearcher) Search(_ context.Context, query string, _ int) ([]research.SearchResult, error) {
	link, ok := s.links[query]
	if !ok {
		return nil, nil
	}
	return []research.SearchResult{{Title: query, Link: link}}, nil
}

// routedClient sends every request to server over TLS, whatever host the URL names.
func routedClient(server *httptest.Server) *http.Client {
	transport := server.Client().Transport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var dialer net.Dialer
		return dialer.DialContext(ctx, network, server.Listener.Addr().String())
	}
	// httptest certificates are issued for example.com.
	transport.TLSClientConfig.ServerName = "example.com"
	return &http.Client{Transport: transport}
}

func TestHarvest_EndToEnd(t *testing.T) {
	var hits int32
	var hosts sync.Map
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		hosts.Store(r.Host, true)
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><a href="mailto:hello@acme.com">Contact</a></body></html>`))
	})
	server := httptest.NewTLSServer(mux)
	defer server.Close()

	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	newRunner := func() *Runner {
		fetcher := fetch.NewWithClient(routedClient(server), &fetch.Options{MaxRetries: 0}, logger)
		limiter := ratelimit.NewDomainLimiterWithInterval(time.Millisecond, logger)
		// Search returns a bare domain, as the search API often does.
		searcher := staticSearcher{links: map[string]string{
			research.SearchQuery("Acme Co"): "acme.com",
		}}
		resolver := research.NewResolver(searcher, fetcher, nil, logger)
		crawler := crawling.NewSiteCrawler(fetcher, limiter, nil, logger)
		results := cache.Open(ctx, cache.NewFileStore(cachePath), cache.DefaultTTL, logger)
		return NewRunner(resolver, crawler, results, nil, logger)
	}

	results := newRunner().Run(ctx, []string{"Acme Co", "Unknown Ltd"})

	assert.Equal(t, []types.Row{
		{Company: "Acme Co", Emails: "hello@acme.com"},
		{Company: "Unknown Ltd", Emails: "No website found"},
	}, types.Rows(results))
	assert.Equal(t, "https://acme.com", results[0].Website)

	// One HEAD for verification plus the homepage and six contact pages.
	firstRunHits := atomic.LoadInt32(&hits)
	assert.Equal(t, int32(1+1+len(crawling.ContactPaths)), firstRunHits)
	hosts.Range(func(host, _ any) bool {
		assert.Equal(t, "acme.com", host)
		return true
	})

	stored, err := cache.NewFileStore(cachePath).Load(ctx)
	require.NoError(t, err)
	require.Contains(t, stored, "Acme Co")
	assert.Equal(t, []string{"hello@acme.com"}, stored["Acme Co"].Emails)

	again := newRunner().Run(ctx, []string{"Acme Co"})
	require.Len(t, again, 1)
	assert.True(t, again[0].Cached)
	assert.Equal(t, "hello@acme.com", again[0].Display())
	assert.Equal(t, firstRunHits, atomic.LoadInt32(&hits), "cache hit must not touch the network")
}
