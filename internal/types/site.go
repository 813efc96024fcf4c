package types

import (
	"fmt"
	"net/url"
	"strings"
)

// Site is a verified base URL together with its rate-limit domain.
type Site struct {
	BaseURL string `json:"base_url"`
	Domain  string `json:"domain"` // host component, including port if present
}

// NewSite parses baseURL and extracts its host. The URL must be of the form scheme://host/...
func NewSite(baseURL string) (Site, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return Site{}, fmt.Errorf("invalid site URL %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Site{}, fmt.Errorf("invalid site URL %q: missing scheme or host", baseURL)
	}
	return Site{
		BaseURL: baseURL,
		Domain:  strings.ToLower(parsed.Host),
	}, nil
}

// PageURL appends path to the base URL with any trailing slash stripped.
func (s Site) PageURL(path string) string {
	return strings.TrimRight(s.BaseURL, "/") + path
}
