package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjglira/visualtestgen/internal/config"
)

// DefaultConfigFile is read when --config is not given. A missing default
// file is not an error.
const DefaultConfigFile = "visualtestgen.yaml"

// options holds the global flags and the state shared by subcommands.
type options struct {
	cfgFile string
	envFile string
	verbose bool
	dryRun  bool

	log     *logrus.Logger
	logFile io.Closer
}

// NewRootCommand builds the visualtestgen command tree. Use Run to also
// release the log file opened from logging.file.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *options) {
	opts := &options{log: newLogger(os.Stderr, logrus.InfoLevel)}

	rootCmd := &cobra.Command{
		Use:   "visualtestgen",
		Short: "Generate visual UI test scaffolding from CSV test cases",
		Long: `visualtestgen reads a CSV description of visual UI test cases and derives
a composed Playwright test template, page-object locators, test data modules
and an environment table.

It runs as a one-shot generator or as a JSON-RPC tool server on stdio.
Settings come from a YAML configuration file (visualtestgen.yaml) and
VISUALTESTGEN_* environment variables.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file with VISUALTESTGEN_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "generate but don't write files")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newServeCmd(opts),
		newExtractCmd(opts),
		newValidateCmd(opts),
		newToolsCmd(opts),
	)
	return rootCmd, opts
}

// Run executes the command tree with args and the given streams. The log
// file is closed whether or not the command succeeds.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd, opts := newRootCommand()
	defer opts.closeLog()

	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

// Execute runs the root command until it completes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// loadConfig reads, overrides and validates the configuration, then
// reconfigures the logger from it.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(o.cfgFile)
	} else {
		cfg, err = config.LoadOrDefault(o.cfgFile)
	}
	if err != nil {
		return nil, err
	}
	if o.envFile != "" {
		if err := config.LoadDotEnv(o.envFile); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := o.configureLogger(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) configureLogger(cmd *cobra.Command, cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if o.verbose {
		level = logrus.DebugLevel
	}
	o.log.SetLevel(level)
	o.log.SetOutput(cmd.ErrOrStderr())

	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		o.log.SetOutput(f)
		o.logFile = f
	}
	return nil
}

func (o *options) closeLog() {
	if o.logFile == nil {
		return
	}
	o.log.SetOutput(io.Discard)
	_ = o.logFile.Close()
	o.logFile = nil
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
