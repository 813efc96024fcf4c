package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-harvester/internal/cache"
)

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// isolateEnv blanks harvester settings and runs the test from a temp dir.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_API_KEY", "GOOGLE_CSE_ID", "CACHE_FILE", "CACHE_BACKEND", "DATABASE_URL",
		"CACHE_EXPIRE_DAYS", "COMPANIES_FILE", "WORKERS",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCandidatesCommand(t *testing.T) {
	out, err := executeCommand(t, "candidates", "Acme", "Co")
	require.NoError(t, err)

	assert.Contains(t, out, "CANDIDATE URLS")
	assert.Contains(t, out, "Company: Acme Co")
	assert.Contains(t, out, "https://www.acmeco.com")
}

func TestRunCommand_MissingSearchCredentials(t *testing.T) {
	dir := isolateEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "companies.txt"), []byte("Acme Co\n"), 0644))

	_, err := executeCommand(t, "run", "--output", filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	assert.Contains(t, err.Error(), "GOOGLE_CSE_ID")

	_, statErr := os.Stat(filepath.Join(dir, "out.csv"))
	assert.True(t, os.IsNotExist(statErr), "no report is written when configuration is invalid")
}

func TestRunCommand_BadFormat(t *testing.T) {
	isolateEnv(t)

	_, err := executeCommand(t, "run", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}

func TestRunCommand_EmptyCompanyList(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("GOOGLE_CSE_ID", "test-cx")
	list := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(list, []byte("\n  \n"), 0644))

	_, err := executeCommand(t, "run", list, "--output", filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no companies loaded from "+list)
}

func TestCacheCommands(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "cache.json")
	t.Setenv("CACHE_FILE", path)

	now := time.Now()
	require.NoError(t, cache.NewFileStore(path).Save(context.Background(), map[string]cache.Entry{
		"Acme Co": cache.NewEntry([]string{"hello@acme.com", "sales@acme.com"}, now),
		"Old Ltd": cache.NewEntry([]string{"info@old.com"}, now.Add(-30*24*time.Hour)),
	}))

	out, err := executeCommand(t, "cache", "list")
	require.NoError(t, err)
	assert.Equal(t, "Acme Co [fresh]: hello@acme.com, sales@acme.com\n", out)

	out, err = executeCommand(t, "cache", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Old Ltd [expired]: info@old.com")

	out, err = executeCommand(t, "cache", "get", "Acme Co")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Acme Co [fresh]"))

	_, err = executeCommand(t, "cache", "get", "Nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no cache entry for "Nobody"`)
}

func TestCacheList_Empty(t *testing.T) {
	isolateEnv(t)

	out, err := executeCommand(t, "cache", "list")
	require.NoError(t, err)
	assert.Equal(t, "Cache is empty\n", out)
}

func TestCacheCommands_PostgresWithoutURL(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CACHE_BACKEND", "postgres")

	_, err := executeCommand(t, "cache", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := newLogger(debug)
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.Equal(t, debug, logger.Core().Enabled(-1), "debug level follows --verbose")
	}
}
