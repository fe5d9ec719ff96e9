package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/dagjudge/internal/app"
	"github.com/spf13/cobra"
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

// ExitCodeFailed is returned by run when the evaluation completes but the
// score is below the threshold.
const ExitCodeFailed = 3

// Env is the environment lookup used for flag fallbacks.
type Env func(key string) string

// NewRootCommand builds the dagjudge command tree. Commands write to outW.
func NewRootCommand(outW io.Writer, env Env) *cobra.Command {
	if env == nil {
		env = os.Getenv
	}
	cfg := app.DefaultConfig()

	root := &cobra.Command{
		Use:           "dagjudge",
		Short:         "Evaluate LLM outputs with decision-tree metrics judged by an LLM.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.DefinitionsPath, "defs", "d", "", "Path to a .hcl file or a directory of .hcl files with metric definitions.")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(newRunCommand(&cfg, env), newValidateCommand(&cfg))
	return root
}

func newValidateCommand(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the definitions and build every metric graph.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The judge is never built here.
			c := *cfg
			c.JudgeAPIKey = "unused"
			config, err := newConfig(c)
			if err != nil {
				return err
			}
			_, err = app.NewApp(cmd.OutOrStdout(), config).Validate(cmd.Context())
			return err
		},
	}
}

func newRunCommand(cfg *app.Config, env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [CASE_PATH]",
		Short: "Evaluate one test case against a metric.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			if len(args) == 1 {
				c.CasePath = args[0]
			}
			if c.JudgeAPIKey == "" && c.JudgeProvider == app.ProviderOpenAI {
				c.JudgeAPIKey = env("OPENAI_API_KEY")
			}
			if c.JudgeBaseURL == "" && c.JudgeProvider == app.ProviderOllama {
				c.JudgeBaseURL = env("OLLAMA_BASE_URL")
			}
			c.JudgeProvider = strings.ToLower(c.JudgeProvider)

			config, err := newConfig(c)
			if err != nil {
				return err
			}
			res, err := app.NewApp(cmd.OutOrStdout(), config).Run(cmd.Context())
			if err != nil {
				return err
			}
			if !res.Success {
				return &ExitError{Code: ExitCodeFailed, Message: "metric " + res.Metric + " did not pass"}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.CasePath, "case", "c", "", "Path to the YAML test case.")
	f.StringVarP(&cfg.Metric, "metric", "m", "", "Metric to evaluate. Defaults to the first declared metric.")
	f.StringVar(&cfg.Scheduler, "scheduler", cfg.Scheduler, "Fan-out strategy. Options: 'sequential' or 'parallel'.")
	f.IntVar(&cfg.ParallelLimit, "parallel-limit", 0, "Maximum concurrent children per node for the parallel scheduler. 0 is unbounded.")
	f.BoolVar(&cfg.IncludeReason, "reason", cfg.IncludeReason, "Generate a natural language reason for the score.")
	f.DurationVar(&cfg.Timeout, "timeout", 0, "Abort the evaluation after this long. 0 disables the timeout.")
	f.StringVar(&cfg.JudgeProvider, "provider", cfg.JudgeProvider, "Judge provider. Options: 'openai' or 'ollama'.")
	f.StringVar(&cfg.JudgeModel, "model", cfg.JudgeModel, "Judge model name.")
	f.StringVar(&cfg.JudgeBaseURL, "base-url", "", "Judge API base URL. Falls back to OLLAMA_BASE_URL for ollama.")
	f.StringVar(&cfg.JudgeAPIKey, "api-key", "", "Judge API key. Falls back to OPENAI_API_KEY.")
	f.Float64Var(&cfg.JudgeTemperature, "temperature", 0, "Judge sampling temperature.")
	f.Float64Var(&cfg.InputPricePerMillion, "input-price", 0, "USD per million prompt tokens, used for cost accounting.")
	f.Float64Var(&cfg.OutputPricePerMillion, "output-price", 0, "USD per million completion tokens, used for cost accounting.")
	f.Float64Var(&cfg.RequestsPerSecond, "rps", 0, "Maximum judge requests per second. 0 is unlimited.")
	f.IntVar(&cfg.Burst, "burst", 1, "Judge request burst size when --rps is set.")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Report format. Options: 'text' or 'json'.")
	f.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	f.BoolVar(&cfg.Trace, "trace", false, "Print OpenTelemetry spans to the output.")
	return cmd
}

func newConfig(c app.Config) (*app.Config, error) {
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.LogLevel = strings.ToLower(c.LogLevel)
	config, err := app.NewConfig(c)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, nil
}

// Execute runs the command tree against args. Usage errors are returned as
// ExitError with code 2.
func Execute(ctx context.Context, outW io.Writer, args []string, env Env) error {
	root := NewRootCommand(outW, env)
	root.SetArgs(args)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})
	err := root.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) && strings.HasPrefix(err.Error(), "unknown command") {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return err
}
