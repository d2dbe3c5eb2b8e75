package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/prism-ci/internal/gitctx"
	"github.com/dshills/prism-ci/internal/output"
	"github.com/dshills/prism-ci/internal/platform"
	"github.com/dshills/prism-ci/internal/redact"
	"github.com/dshills/prism-ci/internal/review"
)

// version is overridden at build time with -ldflags "-X".
var version = "0.1.0"

// Exit codes
const (
	ExitSuccess       = 0
	ExitFailure       = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitReviewError   = 4
	ExitDeliveryError = 5
)

var rootCmd = &cobra.Command{
	Use:   "prism-ci",
	Short: "Automated pull request review for CI pipelines",
	Long: "prism-ci fetches a pull request diff from GitHub, Bitbucket or the local git " +
		"repository, asks an external review generator for a review, and posts the result.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	exitCode = ExitSuccess
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// newScrubber removes forge tokens from everything written to stderr.
func newScrubber() *redact.Scrubber {
	return redact.NewScrubber(
		os.Getenv(platform.EnvGitHubToken),
		os.Getenv(platform.EnvBitbucketToken),
	)
}

// fail reports err on the command's stderr and records its exit code.
// secrets are removed from the message along with the credential env values.
func fail(cmd *cobra.Command, err error, secrets ...string) {
	s := newScrubber()
	s.Add(secrets...)
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", s.Scrub(err.Error()))
	exitCode = exitCodeFor(err)
}

// exitCodeFor maps the error taxonomy onto process exit codes.
func exitCodeFor(err error) int {
	var (
		configErr   *platform.ConfigurationError
		platformErr *platform.UnsupportedPlatformError
		fetchErr    *platform.RemoteFetchError
		deliveryErr *platform.RemoteDeliveryError
		localErr    *gitctx.LocalDiffError
		emptyErr    *review.EmptyReviewError
		artifactErr *output.ArtifactError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &configErr), errors.As(err, &platformErr):
		return ExitConfigError
	case errors.As(err, &fetchErr), errors.As(err, &localErr),
		errors.As(err, &emptyErr), errors.As(err, &artifactErr):
		return ExitReviewError
	case errors.As(err, &deliveryErr):
		return ExitDeliveryError
	default:
		return ExitFailure
	}
}

// scrubWriter redacts secrets from each write. slog handlers emit one
// record per Write, so a secret is never split across calls.
type scrubWriter struct {
	w io.Writer
	s *redact.Scrubber
}

func (sw scrubWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(sw.w, sw.s.Scrub(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print prism-ci version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "prism-ci version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
