package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjglira/visualtestgen/internal/generator"
	"github.com/fjglira/visualtestgen/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the generator as JSON-RPC tools on stdio",
		Long: `Reads newline-delimited JSON-RPC 2.0 requests from stdin and writes responses
to stdout. Logs go to stderr or the configured log file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			gen, err := generator.New(cfg, opts.log)
			if err != nil {
				return fmt.Errorf("failed to create generator: %w", err)
			}

			srv := server.New(server.Info{Name: cfg.Server.Name, Version: cfg.Server.Version}, gen, opts.log)
			err = srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
