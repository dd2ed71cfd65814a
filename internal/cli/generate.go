package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/generator"
	"github.com/fjglira/visualtestgen/internal/naming"
	"github.com/fjglira/visualtestgen/internal/scanner"
)

// ArtifactExtension is appended to the CSV stem in batch mode.
const ArtifactExtension = ".visual.md"

type generateOptions struct {
	csvFile        string
	dir            string
	include        []string
	exclude        []string
	recursive      bool
	output         string
	noLocators     bool
	noTestData     bool
	representative string
	pretty         bool
	jobs           int
}

func newGenerateCmd(opts *options) *cobra.Command {
	g := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the visual test artifact from CSV test cases",
		Long: `Reads CSV test cases from --csv (or stdin with "-") and writes the composed
artifact to --output (or stdout).

With --dir every CSV file under the directory is generated and written to
the --output directory as <name>` + ArtifactExtension + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			gen, err := generator.New(cfg, opts.log)
			if err != nil {
				return fmt.Errorf("failed to create generator: %w", err)
			}

			if g.dir != "" {
				return g.runBatch(cmd, opts, gen)
			}
			return g.runSingle(cmd, opts, gen)
		},
	}

	cmd.Flags().StringVar(&g.csvFile, "csv", "-", `CSV input file ("-" for stdin)`)
	cmd.Flags().StringVar(&g.dir, "dir", "", "generate every CSV file under this directory")
	cmd.Flags().StringSliceVar(&g.include, "include", scanner.DefaultPatterns, "file patterns for --dir")
	cmd.Flags().StringSliceVar(&g.exclude, "exclude", nil, "patterns excluded from --dir")
	cmd.Flags().BoolVar(&g.recursive, "recursive", true, "descend into subdirectories of --dir")
	cmd.Flags().StringVarP(&g.output, "output", "o", "", "output file, or output directory with --dir (default stdout, or --dir)")
	cmd.Flags().BoolVar(&g.noLocators, "no-locators", false, "omit page-object locator modules")
	cmd.Flags().BoolVar(&g.noTestData, "no-test-data", false, "omit test data modules")
	cmd.Flags().StringVar(&g.representative, "representative", "", "representative rows: first, all or none (default from config)")
	cmd.Flags().BoolVar(&g.pretty, "pretty", false, "render the artifact for the terminal instead of raw markdown")
	cmd.Flags().IntVarP(&g.jobs, "jobs", "j", runtime.NumCPU(), "files generated in parallel with --dir")
	return cmd
}

func (g *generateOptions) request(cmd *cobra.Command, raw string) generator.Request {
	req := generator.Request{CSV: raw, Representative: g.representative}
	if cmd.Flags().Changed("no-locators") {
		v := !g.noLocators
		req.Locators = &v
	}
	if cmd.Flags().Changed("no-test-data") {
		v := !g.noTestData
		req.TestData = &v
	}
	return req
}

func (g *generateOptions) runSingle(cmd *cobra.Command, opts *options, gen generator.Generator) error {
	raw, err := readInput(cmd, g.csvFile)
	if err != nil {
		return err
	}

	artifact, err := gen.Generate(cmd.Context(), g.request(cmd, raw))
	if err != nil {
		return err
	}

	if g.output == "" || g.output == "-" {
		if g.pretty {
			return renderMarkdown(cmd.OutOrStdout(), artifact.Text, 100)
		}
		_, err = io.WriteString(cmd.OutOrStdout(), artifact.Text)
		return err
	}
	if opts.dryRun {
		yellow.Fprintf(cmd.OutOrStdout(), "Would write: %s (%d sections)\n", g.output, len(artifact.Sections))
		return nil
	}
	opts.log.Infof("Writing: %s", g.output)
	return writeFile(g.output, artifact.Text)
}

func (g *generateOptions) runBatch(cmd *cobra.Command, opts *options, gen generator.Generator) error {
	files, err := scanner.NewScanner(g.recursive).Scan(g.dir, g.include, g.exclude)
	if err != nil {
		return err
	}
	opts.log.Infof("Found %d CSV file(s) in %s", len(files), g.dir)

	outDir := g.output
	if outDir == "" {
		outDir = g.dir
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)

	// Generation runs in parallel; results are written in scan order.
	artifacts := make([]*domain.Artifact, len(files))
	failed := make([]error, len(files))
	eg, egCtx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(max(g.jobs, 1))
	for i, file := range files {
		i, file := i, file
		eg.Go(func() error {
			defer bar.Add(1)
			raw, err := readInput(cmd, file)
			if err != nil {
				failed[i] = err
				return nil
			}
			artifacts[i], failed[i] = gen.Generate(egCtx, g.request(cmd, raw))
			return nil
		})
	}
	_ = eg.Wait()
	_ = bar.Finish()
	fmt.Fprintln(cmd.ErrOrStderr())

	var failures []string
	for i, file := range files {
		log := opts.log.WithField("file", file)
		if failed[i] != nil {
			log.WithError(failed[i]).Error("Failed to generate")
			failures = append(failures, file)
			continue
		}

		rel, relErr := filepath.Rel(g.dir, file)
		if relErr != nil {
			rel = filepath.Base(file)
		}
		target := filepath.Join(outDir, filepath.Dir(rel), naming.FileStem(file)+ArtifactExtension)

		if opts.dryRun {
			yellow.Fprintf(cmd.OutOrStdout(), "Would write: %s (%d sections)\n", target, len(artifacts[i].Sections))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return domain.NewError("write", target, 0, "failed to create directory", err)
		}
		log.Infof("Writing: %s", target)
		if err := writeFile(target, artifacts[i].Text); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("generation failed for %d file(s): %s", len(failures), strings.Join(failures, ", "))
	}
	green.Fprintf(cmd.OutOrStdout(), "Generated %d artifact(s)\n", len(files))
	return nil
}

func writeFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return domain.NewErrorWithSuggestion("write", path, 0,
			"failed to write output file",
			"check disk space and write permissions for the output directory",
			err)
	}
	return nil
}

// readInput reads path, or the command's stdin when path is "-" or empty.
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", domain.NewError("parse", "stdin", 0, "failed to read input", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.NewErrorWithSuggestion("parse", path, 0,
			"failed to read file",
			"check that the file exists and has read permissions",
			err)
	}
	return string(data), nil
}
