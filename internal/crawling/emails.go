package crawling

import (
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const emailPattern = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`

var (
	// emailScan finds addresses anywhere in visible text.
	emailScan = regexp.MustCompile(emailPattern)
	// emailExact validates a whole mailto target.
	emailExact = regexp.MustCompile(`^` + emailPattern + `$`)
)

// invisibleSelectors are removed before scanning page text.
const invisibleSelectors = "script, style, noscript, template"

// noReplyMarkers reject automated sender addresses.
var noReplyMarkers = []string{"noreply@", "no-reply@", "donotreply@"}

// ExtractionStatus describes the outcome of extracting emails from one page.
type ExtractionStatus string

const (
	ExtractionOK     ExtractionStatus = "ok"
	ExtractionEmpty  ExtractionStatus = "empty"
	ExtractionFailed ExtractionStatus = "failed"
)

// Extraction is the result of scanning a single page.
type Extraction struct {
	Status  ExtractionStatus
	Emails  []string // sorted, deduplicated, lowercase
	Skipped []string // mailto targets that were not valid addresses
	Err     error    // set when Status is failed
}

// ExtractEmails collects email addresses from mailto links and visible text of an HTML page.
func ExtractEmails(htmlContent string) Extraction {
	return ExtractEmailsFrom(strings.NewReader(htmlContent))
}

// ExtractEmailsFrom is ExtractEmails over a reader.
func ExtractEmailsFrom(r io.Reader) Extraction {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Extraction{
			Status: ExtractionFailed,
			Err: &ExtractionError{
				Message: "failed to parse HTML",
				Cause:   err,
			},
		}
	}

	found := make(map[string]bool)
	var skipped []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		email := mailtoAddress(href)
		if email == "" {
			return
		}
		if !emailExact.MatchString(email) {
			skipped = append(skipped, email)
			return
		}
		found[email] = true
	})

	doc.Find(invisibleSelectors).Remove()
	text := strings.ToLower(visibleText(doc.Selection))
	for _, match := range emailScan.FindAllString(text, -1) {
		found[match] = true
	}

	emails := make([]string, 0, len(found))
	for email := range found {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	status := ExtractionOK
	if len(emails) == 0 {
		status = ExtractionEmpty
	}
	return Extraction{
		Status:  status,
		Emails:  emails,
		Skipped: skipped,
	}
}

// mailtoAddress returns the lowercase address between "mailto:" and an optional query.
func mailtoAddress(href string) string {
	href = strings.ToLower(strings.TrimSpace(href))
	address, ok := strings.CutPrefix(href, "mailto:")
	if !ok {
		return ""
	}
	if idx := strings.Index(address, "?"); idx != -1 {
		address = address[:idx]
	}
	return strings.TrimSpace(address)
}

// visibleText joins text nodes with spaces so adjacent elements do not fuse into one token.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// ValidateEmail reports whether an address is worth keeping.
func ValidateEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, marker := range noReplyMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// FilterValid returns the addresses that pass ValidateEmail, preserving order.
func FilterValid(emails []string) []string {
	valid := make([]string, 0, len(emails))
	for _, email := range emails {
		if ValidateEmail(email) {
			valid = append(valid, email)
		}
	}
	return valid
}
