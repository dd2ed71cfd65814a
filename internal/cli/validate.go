package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the visualtestgen.yaml configuration file",
		Long:  `Loads the configuration file, applies VISUALTESTGEN_* overrides and checks for invalid values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			green.Fprintf(cmd.OutOrStdout(), "Configuration file %q is valid.\n", opts.cfgFile)
			opts.log.Debugf("Loaded config: %+v", cfg)
			return nil
		},
	}
}
