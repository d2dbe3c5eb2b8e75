package gitctx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBaseBranch is used when no override is given and origin/HEAD is unset.
const DefaultBaseBranch = "main"

// Repo runs git in Dir. An empty Dir means the current working directory.
type Repo struct {
	Dir string
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// LocalDiffError reports a failed local diff, e.g. outside a work tree or
// with an unresolvable base.
type LocalDiffError struct {
	Base string
	Err  error
}

func (e *LocalDiffError) Error() string {
	return fmt.Sprintf("local diff against %q failed: %v", e.Base, e.Err)
}

func (e *LocalDiffError) Unwrap() error { return e.Err }

// Meta collects repository metadata from git.
func (r Repo) Meta(ctx context.Context) (RepoMeta, error) {
	root, err := r.output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := r.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// ResolveBase picks the diff base: the override when set, else the branch
// origin/HEAD points at, else DefaultBaseBranch.
func (r Repo) ResolveBase(ctx context.Context, override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	out, err := r.output(ctx, "symbolic-ref", "--quiet", "--short", "refs/remotes/origin/HEAD")
	if err == nil {
		if ref := strings.TrimSpace(out); ref != "" {
			return ref
		}
	}
	return DefaultBaseBranch
}

// BranchDiff returns the three-dot diff between base and HEAD, so commits
// made only on base are excluded. Any git failure is a *LocalDiffError.
func (r Repo) BranchDiff(ctx context.Context, base string) (string, error) {
	diffRange := base + "...HEAD"
	diff, err := r.output(ctx, "diff", diffRange)
	if err != nil {
		return "", &LocalDiffError{Base: base, Err: fmt.Errorf("git diff %s: %w", diffRange, err)}
	}
	return diff, nil
}

func (r Repo) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
