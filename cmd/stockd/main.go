// Package main runs the stockd article inventory server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stockcore/internal/config"
	"stockcore/internal/logging"
	"stockcore/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// serveFunc is swapped in tests.
var serveFunc = server.Run

func run(args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, args, stderr)
}

func execute(ctx context.Context, args []string, stderr io.Writer) int {
	cmd := newRootCommand(ctx)
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCommand(ctx context.Context) *cobra.Command {
	var (
		port     int
		driver   string
		document string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:           "stockd",
		Short:         "Serve the article inventory over HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("driver") {
				cfg.Storage.Driver = driver
			}
			if flags.Changed("document") {
				cfg.Storage.DocumentPath = document
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := serveFunc(ctx, cfg, logger); err != nil {
				logger.Error("server exited", zap.Error(err))
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 3000, "listen port (overrides PORT)")
	cmd.Flags().StringVar(&driver, "driver", "fs", "storage driver: fs|memory|sqlite|postgres|s3")
	cmd.Flags().StringVar(&document, "document", "data/articulos.json", "document file for the fs driver")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	return cmd
}
