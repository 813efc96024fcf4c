package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineBytes = 1024 * 1024

// LoadCompanies reads one company name per line, trimming whitespace and skipping blank lines.
// Order and duplicates are preserved.
func LoadCompanies(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var companies []string
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		companies = append(companies, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read company list: %w", err)
	}
	return companies, nil
}

// LoadCompaniesFile reads a company list from path.
func LoadCompaniesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open company list: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadCompanies(f)
}
