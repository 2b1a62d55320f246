package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/opgraph/internal/app"
	"github.com/vk/opgraph/internal/buildfile"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Environment variables that provide defaults for the global flags.
const (
	EnvLogLevel  = "OPGRAPH_LOG_LEVEL"
	EnvLogFormat = "OPGRAPH_LOG_FORMAT"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogFormat string
}

// Execute runs the command line with args. Graph documents and listings
// go to out, logs and diagnostics to errW.
func Execute(ctx context.Context, args []string, out, errW io.Writer, getenv func(string) string) error {
	cmd := NewRootCommand(getenv)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errW)
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand creates the root command. getenv supplies the defaults of
// the global flags.
func NewRootCommand(getenv func(string) string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "opgraph",
		Short: "opgraph - build operation graph generator",
		Long: `opgraph reads HCL build files, infers the dependencies between the
declared operations from the files they read and write, and emits the
transitively reduced operation graph for the execution phase.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", envOr(getenv, EnvLogLevel, "info"),
		"Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", envOr(getenv, EnvLogFormat, "auto"),
		"Log output format. Options: 'text', 'json' or 'auto'.")

	cmd.AddCommand(newGenerateCommand(opts))
	cmd.AddCommand(newOrderCommand(opts))

	return cmd
}

func envOr(getenv func(string) string, key, fallback string) string {
	if getenv == nil {
		return fallback
	}
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildConfig validates the flags into an app configuration. Invalid
// values exit with code 2, like a flag parsing error.
func buildConfig(opts *RootOptions, args []string, cfg app.Config) (*app.Config, error) {
	cfg.BuildPaths = []string{"."}
	if len(args) > 0 {
		cfg.BuildPaths = args
	}
	cfg.LogLevel = strings.ToLower(opts.LogLevel)
	cfg.LogFormat = strings.ToLower(opts.LogFormat)
	cfg.Format = strings.ToLower(cfg.Format)

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, nil
}

func newApp(cmd *cobra.Command, config *app.Config) *app.App {
	return app.NewApp(cmd.ErrOrStderr(), config, buildfile.NewLoader())
}

func newGenerateCommand(opts *RootOptions) *cobra.Command {
	var cfg app.Config

	cmd := &cobra.Command{
		Use:   "generate [BUILD_PATH...]",
		Short: "Generate the operation graph",
		Long: `Generate loads every .hcl file under BUILD_PATH (default: the current
directory), builds the operation graph and writes it as json or yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := buildConfig(opts, args, cfg)
			if err != nil {
				return err
			}
			return newApp(cmd, config).Run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&cfg.OutputPath, "output", "o", "", "Write the graph to this file instead of stdout.")
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", "json", "Graph document format. Options: 'json' or 'yaml'.")
	cmd.Flags().BoolVarP(&cfg.Watch, "watch", "w", false, "Regenerate the graph whenever a build file changes.")
	cmd.Flags().DurationVar(&cfg.Debounce, "debounce", app.DefaultDebounce, "Quiet period before a watch regeneration.")

	return cmd
}

func newOrderCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order [BUILD_PATH...]",
		Short: "Print the operations in a valid execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := buildConfig(opts, args, app.Config{Format: "json"})
			if err != nil {
				return err
			}
			return newApp(cmd, config).Order(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Describe renders err for the terminal.
func Describe(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Message
	}
	return fmt.Sprintf("Error: %v", err)
}
