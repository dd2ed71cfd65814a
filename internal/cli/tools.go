package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjglira/visualtestgen/internal/generator"
	"github.com/fjglira/visualtestgen/internal/server"
)

func newToolsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools served by the serve command",
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
			res, err := srv.Invoke(cmd.Context(), server.ToolListTools, nil)
			if err != nil {
				return err
			}
			for _, c := range res.Content {
				fmt.Fprint(cmd.OutOrStdout(), c.Text)
			}
			return nil
		},
	}
}
