package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/contact-harvester/internal/types"
)

func newPlainPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.SetColor(false)
	return p, &buf
}

func TestPrintResult(t *testing.T) {
	p, buf := newPlainPrinter()

	p.PrintResult(0, 3, types.EmailsResult("Acme Co", []string{"hello@acme.com"}, "https://acme.com", false))
	p.PrintResult(1, 3, types.NoWebsiteResult("Nowhere"))
	p.PrintResult(2, 3, types.EmailsResult("Beta", []string{"b@beta.io"}, "", true))

	assert.Equal(t,
		"[1/3] Acme Co: hello@acme.com\n"+
			"      https://acme.com\n"+
			"[2/3] Nowhere: No website found\n"+
			"[3/3] Beta: b@beta.io (cached)\n",
		buf.String())
}

func TestPrintResult_Color(t *testing.T) {
	p, buf := newPlainPrinter()
	p.SetColor(true)

	p.PrintResult(0, 1, types.ErrorResult("Broken", "boom"))

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Error: boom")
}

func TestPrintSummary(t *testing.T) {
	p, buf := newPlainPrinter()

	p.PrintSummary([]types.CompanyResult{
		types.EmailsResult("Acme", []string{"a@acme.com"}, "https://acme.com", false),
		types.EmailsResult("Beta", []string{"b@beta.io"}, "", true),
		types.NoWebsiteResult("Nowhere"),
		types.NotFoundResult("Quiet", "https://quiet.com"),
		types.ErrorResult("Broken", "crawl error"),
	})
	output := buf.String()

	assert.Contains(t, output, "HARVEST SUMMARY")
	assert.Contains(t, output, "Companies:        5")
	assert.Contains(t, output, "With emails:      2 (1 cached)")
	assert.Contains(t, output, "No website found: 1")
	assert.Contains(t, output, "No emails found:  1")
	assert.Contains(t, output, "Errors:           1")
	assert.Contains(t, output, "Broken: crawl error")
}

func TestPrintSummary_TruncatesFailures(t *testing.T) {
	p, buf := newPlainPrinter()

	var results []types.CompanyResult
	for i := 0; i < maxItemsToShow+2; i++ {
		results = append(results, types.ErrorResult(fmt.Sprintf("Co%d", i), strings.Repeat("x", 100)))
	}
	p.PrintSummary(results)
	output := buf.String()

	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "...")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}

func TestPrintCandidates(t *testing.T) {
	p, buf := newPlainPrinter()

	p.PrintCandidates("Acme Co", []string{"https://www.acmeco.com", "https://acmeco.com"})
	assert.Contains(t, buf.String(), "CANDIDATE URLS")
	assert.Contains(t, buf.String(), "• https://www.acmeco.com")

	buf.Reset()
	p.PrintCandidates("", nil)
	assert.Contains(t, buf.String(), "No candidates")
}

func TestPrintCacheEntry(t *testing.T) {
	p, buf := newPlainPrinter()

	p.PrintCacheEntry("Acme", []string{"a@acme.com", "b@acme.com"}, true)
	p.PrintCacheEntry("Old", []string{"o@old.com"}, false)

	assert.Equal(t, "Acme [fresh]: a@acme.com, b@acme.com\nOld [expired]: o@old.com\n", buf.String())
}
