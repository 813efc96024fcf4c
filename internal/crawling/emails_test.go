package crawling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmails_MailtoLinks(t *testing.T) {
	html := `<html><body>
		<a href="MAILTO:Hello@Acme.com?subject=Hi">Write to us</a>
		<a href="mailto:sales@acme.com">Sales</a>
		<a href="mailto:not-an-email">Broken</a>
		<a href="/contact">Contact</a>
	</body></html>`

	got := ExtractEmails(html)

	assert.Equal(t, ExtractionOK, got.Status)
	assert.Equal(t, []string{"hello@acme.com", "sales@acme.com"}, got.Emails)
	assert.Equal(t, []string{"not-an-email"}, got.Skipped)
	assert.NoError(t, got.Err)
}

func TestExtractEmails_VisibleTextIsLowercased(t *testing.T) {
	got := ExtractEmails(`<p>Reach us at Sales@ACME.com or sales@acme.com.</p>`)

	assert.Equal(t, []string{"sales@acme.com"}, got.Emails)
}

func TestExtractEmails_IgnoresInvisibleContent(t *testing.T) {
	html := `<html><head>
		<style>.x { content: "style@acme.com"; }</style>
		<script>var contact = "script@acme.com";</script>
	</head><body>
		<noscript>noscript@acme.com</noscript>
		<template><p>template@acme.com</p></template>
		<p>visible@acme.com</p>
	</body></html>`

	got := ExtractEmails(html)

	assert.Equal(t, []string{"visible@acme.com"}, got.Emails)
}

func TestExtractEmails_AdjacentElementsDoNotFuse(t *testing.T) {
	got := ExtractEmails(`<div><span>Email</span><span>info@acme.com</span></div>`)

	assert.Equal(t, []string{"info@acme.com"}, got.Emails)
}

func TestExtractEmails_UnionOfMailtoAndText(t *testing.T) {
	html := `<a href="mailto:b@acme.com">b@acme.com</a><p>a@acme.com</p>`

	got := ExtractEmails(html)

	assert.Equal(t, []string{"a@acme.com", "b@acme.com"}, got.Emails)
}

func TestExtractEmails_NoEmails(t *testing.T) {
	for _, html := range []string{"", "<html><body><p>Nothing here</p></body></html>", "user@localhost"} {
		got := ExtractEmails(html)
		assert.Equal(t, ExtractionEmpty, got.Status, html)
		assert.Empty(t, got.Emails)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestExtractEmailsFrom_ReadFailure(t *testing.T) {
	got := ExtractEmailsFrom(failingReader{})

	assert.Equal(t, ExtractionFailed, got.Status)
	assert.Empty(t, got.Emails)
	require.Error(t, got.Err)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, got.Err, &extractionErr)
	assert.Contains(t, got.Err.Error(), "connection reset")
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"hello@acme.com", true},
		{"noreply@acme.com", false},
		{"NoReply@Acme.com", false},
		{"no-reply@acme.com", false},
		{"team.no-reply@acme.com", false},
		{"donotreply@acme.com", false},
		{"reply@acme.com", true},
		{"noreply.team@acme.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateEmail(tt.email))
		})
	}
}

func TestFilterValid(t *testing.T) {
	got := FilterValid([]string{"a@acme.com", "noreply@acme.com", "b@acme.com"})
	assert.Equal(t, []string{"a@acme.com", "b@acme.com"}, got)

	assert.Empty(t, FilterValid(nil))
}
