// Package observability provides formatted console output for harvest runs.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/jonathan/contact-harvester/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes human-facing progress lines and summaries.
type Printer struct {
	out  io.Writer
	good *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

// NewPrinter creates a new Printer that writes to the given writer.
// Colors follow fatih/color's terminal detection.
func NewPrinter(out io.Writer) *Printer {
	p := &Printer{
		out:  out,
		good: color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	p.SetColor(!color.NoColor)
	return p
}

// SetColor forces colored output on or off.
func (p *Printer) SetColor(enabled bool) {
	for _, c := range []*color.Color{p.good, p.warn, p.bad, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResult writes one progress line for a finished company.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResult(index, total int, result types.CompanyResult) {
	prefix := p.dim.Sprintf("[%d/%d]", index+1, total)

	var status string
	switch result.Outcome {
	case types.OutcomeEmails:
		status = p.good.Sprint(result.Display())
		if result.Cached {
			status += p.dim.Sprint(" (cached)")
		}
	case types.OutcomeNoWebsite, types.OutcomeNotFound:
		status = p.warn.Sprint(result.Display())
	default:
		status = p.bad.Sprint(result.Display())
	}

	fmt.Fprintf(p.out, "%s %s: %s\n", prefix, result.Company, status)
	if result.Website != "" {
		fmt.Fprintf(p.out, "      %s\n", p.dim.Sprint(result.Website))
	}
}

// PrintSummary outputs run totals and the first few failures.
func (p *Printer) PrintSummary(results []types.CompanyResult) {
	summary := types.Summarize(results)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Companies:        %d\n", summary.Total))
	sb.WriteString(fmt.Sprintf("With emails:      %d (%d cached)\n", summary.WithEmail, summary.Cached))
	sb.WriteString(fmt.Sprintf("No website found: %d\n", summary.NoWebsite))
	sb.WriteString(fmt.Sprintf("No emails found:  %d\n", summary.NotFound))
	sb.WriteString(fmt.Sprintf("Errors:           %d", summary.Errors))

	var failed []types.CompanyResult
	for _, r := range results {
		if r.Outcome == types.OutcomeError {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\n\nFailures:\n")
		count := min(len(failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", failed[i].Company, failed[i].Error))
		}
		if len(failed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxItemsToShow))
		}
	}

	p.printBox("HARVEST SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates lists guessed website URLs for a company.
func (p *Printer) PrintCandidates(company string, urls []string) {
	if len(urls) == 0 {
		p.printBox("CANDIDATE URLS", fmt.Sprintf("No candidates for %q", company))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company: %s\n\n", company))
	for _, u := range urls {
		sb.WriteString(fmt.Sprintf("• %s\n", u))
	}
	p.printBox("CANDIDATE URLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCacheEntry outputs one cached company and its emails.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCacheEntry(company string, emails []string, fresh bool) {
	state := p.good.Sprint("fresh")
	if !fresh {
		state = p.warn.Sprint("expired")
	}
	fmt.Fprintf(p.out, "%s [%s]: %s\n", company, state, strings.Join(emails, types.EmailSeparator))
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}
