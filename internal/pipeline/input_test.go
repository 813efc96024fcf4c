package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCompanies(t *testing.T) {
	input := "\ufeffAcme Co\n\n  Beta Inc  \r\n\t\nAcme Co\nGamma"

	companies, err := LoadCompanies(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Co", "Beta Inc", "Acme Co", "Gamma"}, companies)
}

func TestLoadCompanies_Empty(t *testing.T) {
	companies, err := LoadCompanies(strings.NewReader("\n  \n"))
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestLoadCompaniesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.txt")
	require.NoError(t, os.WriteFile(path, []byte("Acme Co\nBeta\n"), 0o600))

	companies, err := LoadCompaniesFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Co", "Beta"}, companies)

	_, err = LoadCompaniesFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open company list")
}
