package cli

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/prism-ci/internal/config"
	"github.com/dshills/prism-ci/internal/pipeline"
	"github.com/dshills/prism-ci/internal/platform"
)

// Shared run flags
var (
	flagConfig        string
	flagPlatform      string
	flagGenerator     string
	flagGeneratorArgs string
	flagArtifact      string
	flagMaxLength     int
	flagBase          string
	flagVerbose       bool
	flagPretty        bool
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file (.toml, .yaml or .json; default: user config file)")
	cmd.Flags().StringVar(&flagPlatform, "platform", "", "Execution context (github, bitbucket, local)")
	cmd.Flags().StringVar(&flagGenerator, "generator", "", "Review generator command")
	cmd.Flags().StringVar(&flagGeneratorArgs, "generator-args", "", "Review generator arguments (shell quoting)")
	cmd.Flags().StringVar(&flagArtifact, "artifact", "", "Path of the review artifact file")
	cmd.Flags().IntVar(&flagMaxLength, "max-length", 0, "Maximum review comment length in characters")
	cmd.Flags().StringVar(&flagBase, "base", "", "Base branch for local diffs")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Log debug diagnostics to stderr")
	cmd.Flags().BoolVar(&flagPretty, "pretty", false, "Render markdown when printing to a terminal")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagPlatform != "" {
		m["platform"] = flagPlatform
	}
	if flagGenerator != "" {
		m["generator.command"] = flagGenerator
	}
	if flagGeneratorArgs != "" {
		m["generator.args"] = flagGeneratorArgs
	}
	if flagArtifact != "" {
		m["artifact_path"] = flagArtifact
	}
	if flagMaxLength > 0 {
		m["max_comment_length"] = strconv.Itoa(flagMaxLength)
	}
	if flagBase != "" {
		m["base_branch"] = flagBase
	}
	if flagVerbose {
		m["verbose"] = "true"
	}
	if flagPretty {
		m["pretty"] = "true"
	}
	return m
}

// loadConfig resolves the effective configuration for run and check.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig, buildOverrides())
	if err != nil {
		return config.Config{}, &platform.ConfigurationError{Reason: err.Error()}
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(scrubWriter{w: w, s: newScrubber()}, &slog.HandlerOptions{Level: level}))
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Review the current pull request and deliver the result",
	Long: "Resolve the execution context, fetch the diff, run the review generator and " +
		"deliver the review: a pull request comment on GitHub or Bitbucket, stdout locally. " +
		"The review is always written to the artifact file first.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			fail(cmd, err)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := &pipeline.Pipeline{
			Config: cfg,
			Stdout: cmd.OutOrStdout(),
			Logger: newLogger(cmd.ErrOrStderr(), cfg.Verbose),
		}
		res, err := p.Run(ctx)
		if err != nil {
			fail(cmd, err, res.Secrets...)
		}
		return nil
	},
}

func init() {
	addRunFlags(runCmd)
}
