// Package cli implements the dosimetry command tree.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dosimetry "github.com/goliatone/go-dosimetry"
	"github.com/goliatone/go-dosimetry/internal/config"
	"github.com/goliatone/go-dosimetry/internal/logging"
	"github.com/goliatone/go-dosimetry/pkg/submit"
	"github.com/goliatone/go-dosimetry/pkg/tui"
)

// Option configures the command tree. Options exist for tests and embedders;
// the binary uses none.
type Option func(*app)

// WithPromptDriver replaces the interactive survey driver.
func WithPromptDriver(driver tui.PromptDriver) Option {
	return func(a *app) {
		a.driver = driver
	}
}

// WithStackOptions appends options used when the pipeline is built.
func WithStackOptions(opts ...dosimetry.Option) Option {
	return func(a *app) {
		a.stackOpts = append(a.stackOpts, opts...)
	}
}

type globalFlags struct {
	apiURL         string
	strategy       string
	envFile        string
	logLevel       string
	logFormat      string
	metricsFile    string
	strictContract bool
}

type app struct {
	flags     globalFlags
	driver    tui.PromptDriver
	stackOpts []dosimetry.Option

	cfg    *config.Config
	logger *zap.Logger
	stack  *dosimetry.Stack
}

// NewRootCommand builds the dosimetry command.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	root := &cobra.Command{
		Use:   "dosimetry",
		Short: "Submit radiotherapy dosimetry experiments to the data portal",
		Long: `dosimetry collects an article, an experiment, the equipment used and a
measured dataset, then submits them to the dosimetry data portal.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.apiURL, "api-url", "", "backend base URL (overrides DOSIMETRY_API_URL)")
	flags.StringVar(&a.flags.strategy, "strategy", "", "submission strategy: atomic or decomposed")
	flags.StringVar(&a.flags.envFile, "env-file", "", "read settings from this file instead of ./.env")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "log format: console or json")
	flags.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when the command ends")
	flags.BoolVar(&a.flags.strictContract, "strict-contract", false, "validate requests against the API contract before sending")

	root.AddCommand(
		a.wizardCommand(),
		a.submitCommand(),
		a.batchCommand(),
		a.articlesCommand(),
		a.healthCommand(),
		a.contractCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var envFiles []string
	if a.flags.envFile != "" {
		envFiles = append(envFiles, a.flags.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	set := cmd.Flags()
	if set.Changed("api-url") {
		cfg.APIURL = a.flags.apiURL
	}
	if set.Changed("strategy") {
		cfg.Strategy = a.flags.strategy
	}
	if set.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if set.Changed("log-format") {
		cfg.LogFormat = a.flags.logFormat
	}
	if set.Changed("metrics-file") {
		cfg.MetricsFile = a.flags.metricsFile
	}
	if set.Changed("strict-contract") {
		cfg.StrictContract = a.flags.strictContract
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	notifier := tui.NewNotifier(cmd.ErrOrStderr(), tui.DefaultTheme())
	stackOpts := append([]dosimetry.Option{
		dosimetry.WithLogger(logger),
		dosimetry.WithSubmitOptions(submit.WithNotifier(notifier)),
	}, a.stackOpts...)
	stack, err := dosimetry.Build(cmd.Context(), cfg, stackOpts...)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.stack = cfg, logger, stack
	return nil
}

// runE wraps a command body so metrics are written and logs flushed whether
// or not the body fails.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if werr := a.stack.WriteMetrics(a.cfg.MetricsFile); werr != nil {
			err = errors.Join(err, werr)
		}
		_ = a.logger.Sync()
		return err
	}
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
