package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-harvester/internal/observability"
)

var cacheCommand = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the results cache",
}

var cacheListCommand = &cobra.Command{
	Use:   "list",
	Short: "List cached companies and their emails",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheGetCommand = &cobra.Command{
	Use:   "get <company>",
	Short: "Show the cached emails for one company",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheGet,
}

var cacheListExpired bool

func init() {
	cacheListCommand.Flags().BoolVar(&cacheListExpired, "all", false, "Include expired entries")

	cacheCommand.AddCommand(cacheListCommand, cacheGetCommand)
	rootCmd.AddCommand(cacheCommand)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	shown := 0
	for _, company := range a.cache.Companies() {
		entry, _ := a.cache.Lookup(company)
		fresh := a.cache.IsFresh(entry)
		if !fresh && !cacheListExpired {
			continue
		}
		printer.PrintCacheEntry(company, entry.Emails, fresh)
		shown++
	}
	if shown == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
	}
	return nil
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	entry, ok := a.cache.Lookup(args[0])
	if !ok {
		return fmt.Errorf("no cache entry for %q", args[0])
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintCacheEntry(args[0], entry.Emails, a.cache.IsFresh(entry))
	return nil
}
