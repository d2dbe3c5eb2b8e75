package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/prism-ci/internal/gitctx"
	"github.com/dshills/prism-ci/internal/platform"
)

// credentialEnv lists, per remote platform, the variables check reports on.
type credentialEnv struct {
	name     string
	optional bool
}

var credentialEnvs = map[platform.Platform][]credentialEnv{
	platform.GitHub: {
		{name: platform.EnvGitHubToken},
		{name: platform.EnvGitHubRepository},
		{name: platform.EnvPRNumber},
		{name: platform.EnvGitHubRef, optional: true},
	},
	platform.Bitbucket: {
		{name: platform.EnvBitbucketToken},
		{name: platform.EnvBitbucketUsername, optional: true},
		{name: platform.EnvBitbucketWorkspace},
		{name: platform.EnvBitbucketRepoSlug},
		{name: platform.EnvBitbucketPRID},
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and credentials without contacting any forge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			fail(cmd, err)
			return nil
		}
		if err := cfg.Validate(); err != nil {
			fail(cmd, &platform.ConfigurationError{Reason: err.Error()})
			return nil
		}

		out := cmd.OutOrStdout()
		p, err := platform.Parse(cfg.Platform)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		fmt.Fprintf(out, "Platform:   %s\n", p)
		if p.IsRemote() {
			printCredentials(out, p, os.Getenv)
		}

		if _, err := exec.LookPath(cfg.Generator.Command); err != nil {
			fmt.Fprintf(out, "Generator:  %s %s (not found on PATH)\n", cfg.Generator.Command, strings.Join(cfg.Generator.Args, " "))
		} else {
			fmt.Fprintf(out, "Generator:  %s %s\n", cfg.Generator.Command, strings.Join(cfg.Generator.Args, " "))
		}
		fmt.Fprintf(out, "Artifact:   %s\n", cfg.ArtifactPath)
		fmt.Fprintf(out, "Max length: %d\n", cfg.MaxCommentLength)

		if !p.IsRemote() {
			printLocal(cmd.Context(), out, cfg.BaseBranch)
		}

		if _, err := platform.Resolve(cfg.Platform, os.Getenv); err != nil {
			fail(cmd, err)
			return nil
		}
		fmt.Fprintln(out, "OK")
		return nil
	},
}

func printCredentials(w io.Writer, p platform.Platform, getenv func(string) string) {
	for _, env := range credentialEnvs[p] {
		set := strings.TrimSpace(getenv(env.name)) != ""
		var state string
		switch {
		case set:
			state = "set"
		case env.optional:
			state = "not set (optional)"
		default:
			state = "missing"
		}
		fmt.Fprintf(w, "  %-20s %s\n", env.name, state)
	}
}

func printLocal(ctx context.Context, w io.Writer, baseOverride string) {
	repo := gitctx.Repo{}
	meta, err := repo.Meta(ctx)
	if err != nil {
		fmt.Fprintf(w, "Repository: not a git repository (%v)\n", err)
		return
	}
	fmt.Fprintf(w, "Repository: %s\n", meta.Root)
	fmt.Fprintf(w, "Branch:     %s\n", meta.Branch)
	fmt.Fprintf(w, "Base:       %s\n", repo.ResolveBase(ctx, baseOverride))
}

func init() {
	addRunFlags(checkCmd)
}
