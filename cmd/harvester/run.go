package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-harvester/internal/observability"
	"github.com/jonathan/contact-harvester/internal/pipeline"
	"github.com/jonathan/contact-harvester/internal/report"
	"github.com/jonathan/contact-harvester/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run [companies-file]",
	Short: "Harvest contact emails for every company in a list",
	Long: `Reads one company name per line, resolves each company's website, crawls the homepage and
common contact pages, and writes one row per company in input order.

The companies file defaults to COMPANIES_FILE. Use --output - to write the report to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHarvestCmd,
}

var (
	runOutput   string
	runFormat   string
	runWorkers  int
	runQuiet    bool
	runFallback bool
)

func init() {
	runCommand.Flags().StringVarP(&runOutput, "output", "o", "results.csv", "Report path, or - for stdout")
	runCommand.Flags().StringVarP(&runFormat, "format", "f", "", "Report format: csv, xlsx, or json (default: from the output extension)")
	runCommand.Flags().IntVarP(&runWorkers, "workers", "w", 0, "Companies processed concurrently (default: WORKERS)")
	runCommand.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress per-company progress lines")
	runCommand.Flags().BoolVar(&runFallback, "guess", false, "Try guessed domains when search finds nothing")

	rootCmd.AddCommand(runCommand)
}

func runHarvestCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := report.ResolveFormat(runFormat, runOutput)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("guess") {
		a.cfg.GuessFallback = runFallback
	}

	source := a.cfg.CompaniesFile
	if len(args) == 1 {
		source = args[0]
	}
	companies, err := pipeline.LoadCompaniesFile(source)
	if err != nil {
		return err
	}
	if len(companies) == 0 {
		return fmt.Errorf("no companies loaded from %s", source)
	}

	// Progress goes to stderr when the report itself is written to stdout.
	progressOut := cmd.OutOrStdout()
	if runOutput == "-" {
		progressOut = cmd.ErrOrStderr()
	}
	printer := observability.NewPrinter(progressOut)

	opts := pipeline.RunOptions{Workers: runWorkers, Source: source}
	if !runQuiet {
		opts.OnResult = func(e pipeline.ProgressEvent) {
			printer.PrintResult(e.Index, e.Total, e.Result)
		}
	}

	results, err := harvest(ctx, a, companies, opts)
	if err != nil {
		return err
	}

	if err := writeReport(cmd, format, types.Rows(results)); err != nil {
		return err
	}
	printer.PrintSummary(results)

	if ctx.Err() != nil {
		return fmt.Errorf("harvest interrupted: %w", ctx.Err())
	}
	return nil
}

func harvest(ctx context.Context, a *app, companies []string, opts pipeline.RunOptions) ([]types.CompanyResult, error) {
	runner, err := a.newRunner(ctx, opts)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx, companies), nil
}

func writeReport(cmd *cobra.Command, format report.Format, rows []types.Row) error {
	if runOutput == "-" {
		return report.Write(cmd.OutOrStdout(), format, rows)
	}
	if err := report.WriteFile(runOutput, format, rows); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(rows), runOutput)
	return nil
}
