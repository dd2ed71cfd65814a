package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjglira/visualtestgen/internal/extractor"
)

func newExtractCmd(opts *options) *cobra.Command {
	var (
		input  string
		lang   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write the modules of a generated artifact to files",
		Long: `Reads an artifact produced by generate from --input (or stdin with "-") and
writes every fenced module that carries a path attribute below --out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.loadConfig(cmd); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			raw, err := readInput(cmd, input)
			if err != nil {
				return err
			}

			e := extractor.New()
			files, err := e.Extract([]byte(raw), lang)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				opts.log.Warn("No modules with a path attribute found")
				return nil
			}

			if opts.dryRun {
				for _, line := range extractor.Summary(files) {
					yellow.Fprintf(cmd.OutOrStdout(), "Would write: %s\n", line)
				}
				return nil
			}

			written, err := e.Write(outDir, files)
			for _, path := range written {
				opts.log.Infof("Writing: %s", path)
				cyan.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", `artifact file ("-" for stdin)`)
	cmd.Flags().StringVar(&lang, "lang", "typescript", "only extract blocks in this language (empty for all)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory the module paths are relative to")
	return cmd
}
