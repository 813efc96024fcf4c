package research

import "strings"

var candidateTLDs = []string{"com", "org", "net", "co"}

var nameReplacer = strings.NewReplacer(
	"'", "",
	"&", "and",
	",", "",
	".", "",
)

// CandidateURLs guesses website URLs from a company name, most likely first.
// Names that normalize to nothing yield no candidates.
func CandidateURLs(companyName string) []string {
	words := strings.Fields(nameReplacer.Replace(strings.ToLower(companyName)))
	if len(words) == 0 {
		return nil
	}
	base := strings.Join(words, "")

	candidates := make([]string, 0, 2*len(candidateTLDs)+2)
	for _, tld := range candidateTLDs {
		candidates = append(candidates,
			"https://www."+base+"."+tld,
			"https://"+base+"."+tld)
	}
	for _, sep := range []string{"-", "_"} {
		candidates = append(candidates, "https://"+strings.Join(words, sep)+".com")
	}

	return dedupe(candidates)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	unique := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			unique = append(unique, item)
		}
	}
	return unique
}
