package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-harvester/internal/pipeline"
	"github.com/jonathan/contact-harvester/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes the harvest pipeline and the results cache.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default: SERVER_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	runner, err := a.newRunner(ctx, pipeline.RunOptions{Source: "api"})
	if err != nil {
		return err
	}

	addr := a.cfg.ServerAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	// A nil *db.DB must not become a non-nil RunStore.
	var runs server.RunStore
	if a.database != nil {
		runs = a.database
	}

	srv := server.New(runner, a.cache, runs, &server.Options{Addr: addr}, a.logger)
	return srv.ListenAndServe(ctx)
}
