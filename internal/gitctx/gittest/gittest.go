// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// Repo is a temporary repository with a main branch and a checked-out
// feature branch.
type Repo struct {
	t   testing.TB
	Dir string
}

// New creates a repository whose main branch holds main.go and whose
// feature branch adds files on top of it, one commit per file.
func New(t testing.TB, files map[string]string) *Repo {
	t.Helper()
	r := &Repo{t: t, Dir: t.TempDir()}

	r.Git("init")
	r.Git("checkout", "-b", "main")
	r.Commit("initial", map[string]string{"main.go": "package main\n"})
	r.Git("checkout", "-b", "feature")
	if len(files) > 0 {
		r.Commit("feature work", files)
	}
	return r
}

// Git runs git in the repository and fails the test on error.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=test",
		"GIT_COMMITTER_EMAIL=test@test.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return string(out)
}

// Commit writes files and commits them on the current branch.
func (r *Repo) Commit(msg string, files map[string]string) {
	r.t.Helper()
	for name, content := range files {
		path := filepath.Join(r.Dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			r.t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			r.t.Fatal(err)
		}
		r.Git("add", name)
	}
	r.Git("-c", "commit.gpgsign=false", "commit", "-m", msg)
}
