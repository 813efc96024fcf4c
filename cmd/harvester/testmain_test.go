package main

import (
	"os"
	"testing"

	"github.com/fatih/color"
)

// TestMain runs before all tests. Output is compared as plain text.
func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}
