package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyResult_Display(t *testing.T) {
	tests := []struct {
		name     string
		result   CompanyResult
		expected string
	}{
		{
			name:     "emails are sorted and comma joined",
			result:   EmailsResult("Acme", []string{"sales@acme.com", "hello@acme.com"}, "https://acme.com", false),
			expected: "hello@acme.com, sales@acme.com",
		},
		{"no website", NoWebsiteResult("Acme"), "No website found"},
		{"not found", NotFoundResult("Acme", "https://acme.com"), "Not found"},
		{"error", ErrorResult("Acme", "boom"), "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.Display())
			assert.Equal(t, Row{Company: "Acme", Emails: tt.expected}, tt.result.Row())
		})
	}
}

func TestEmailsResult_DoesNotAliasInput(t *testing.T) {
	input := []string{"b@x.com", "a@x.com"}
	r := EmailsResult("X", input, "", true)

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, r.Emails)
	assert.Equal(t, []string{"b@x.com", "a@x.com"}, input)
	assert.True(t, r.Cached)
}

func TestRow_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Row{Company: "Acme Co", Emails: "hello@acme.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Company":"Acme Co","Emails":"hello@acme.com"}`, string(data))
}

func TestRows_PreservesOrder(t *testing.T) {
	rows := Rows([]CompanyResult{
		NoWebsiteResult("B"),
		NotFoundResult("A", ""),
		ErrorResult("C", "x"),
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "B", rows[0].Company)
	assert.Equal(t, "A", rows[1].Company)
	assert.Equal(t, "C", rows[2].Company)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]CompanyResult{
		EmailsResult("A", []string{"a@a.com"}, "", true),
		EmailsResult("B", []string{"b@b.com"}, "", false),
		NoWebsiteResult("C"),
		NotFoundResult("D", ""),
		ErrorResult("E", "x"),
	})

	assert.Equal(t, Summary{Total: 5, WithEmail: 2, Cached: 1, NoWebsite: 1, NotFound: 1, Errors: 1}, s)
}

func TestNewSite(t *testing.T) {
	site, err := NewSite("https://Acme.com:8443/home")
	require.NoError(t, err)
	assert.Equal(t, "acme.com:8443", site.Domain)
	assert.Equal(t, "https://Acme.com:8443/home/contact", site.PageURL("/contact"))

	site, err = NewSite("https://acme.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/about", site.PageURL("/about"))
}

func TestNewSite_Invalid(t *testing.T) {
	for _, raw := range []string{"acme.com", "", "://bad", "/just/a/path"} {
		_, err := NewSite(raw)
		assert.Error(t, err, raw)
	}
}

func TestRunStatusConstants(t *testing.T) {
	statuses := []string{
		RunStatusRunning,
		RunStatusCompleted,
		RunStatusCancelled,
		RunStatusFailed,
	}

	seen := make(map[string]bool)
	for _, status := range statuses {
		assert.NotEmpty(t, status)
		assert.False(t, seen[status], "status constants should be unique")
		seen[status] = true
	}
}
