package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-harvester/internal/observability"
	"github.com/jonathan/contact-harvester/internal/research"
)

var candidatesCommand = &cobra.Command{
	Use:   "candidates <company name>",
	Short: "Print the guessed website URLs for a company name",
	Long: `Prints the domain guesses tried by the fallback resolver, without any network access.

Example:
  harvester candidates "Acme & Sons, Inc."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCandidates,
}

func init() {
	rootCmd.AddCommand(candidatesCommand)
}

func runCandidates(cmd *cobra.Command, args []string) error {
	company := strings.Join(args, " ")
	observability.NewPrinter(cmd.OutOrStdout()).PrintCandidates(company, research.CandidateURLs(company))
	return nil
}
