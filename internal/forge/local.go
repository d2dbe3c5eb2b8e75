package forge

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/dshills/prism-ci/internal/gitctx"
	"github.com/dshills/prism-ci/internal/platform"
)

const defaultWrap = 100

// Local reviews the current branch of a working tree and prints the result.
type Local struct {
	Repo gitctx.Repo
	// Base overrides base-branch detection when set.
	Base string
	// Out receives the document. Nil means os.Stdout.
	Out io.Writer
	// Pretty renders markdown when Out is a terminal.
	Pretty bool

	resolvedBase string
}

// Platform implements Forge.
func (l *Local) Platform() platform.Platform { return platform.Local }

// BaseBranch returns the base used by the last FetchDiff.
func (l *Local) BaseBranch() string { return l.resolvedBase }

// FetchDiff returns `git diff <base>...HEAD`.
func (l *Local) FetchDiff(ctx context.Context) (string, error) {
	l.resolvedBase = l.Repo.ResolveBase(ctx, l.Base)
	return l.Repo.BranchDiff(ctx, l.resolvedBase)
}

// Post writes doc to Out.
func (l *Local) Post(_ context.Context, doc string) error {
	out := l.Out
	if out == nil {
		out = os.Stdout
	}
	if width, ok := terminalWidth(out); ok && l.Pretty {
		if rendered, err := render(doc, width); err == nil {
			doc = rendered
		}
	}
	if !strings.HasSuffix(doc, "\n") {
		doc += "\n"
	}
	if _, err := io.WriteString(out, doc); err != nil {
		return fmt.Errorf("writing review to stdout: %w", err)
	}
	return nil
}

func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return min(width, defaultWrap), true
	}
	return defaultWrap, true
}

func render(doc string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating glamour renderer: %w", err)
	}
	return r.Render(doc)
}
