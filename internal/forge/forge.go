package forge

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dshills/prism-ci/internal/bitbucket"
	"github.com/dshills/prism-ci/internal/github"
	"github.com/dshills/prism-ci/internal/gitctx"
	"github.com/dshills/prism-ci/internal/platform"
)

// Forge fetches a diff from, and posts a review to, one execution context.
type Forge interface {
	Platform() platform.Platform
	FetchDiff(ctx context.Context) (string, error)
	Post(ctx context.Context, doc string) error
}

var (
	_ Forge = (*github.Client)(nil)
	_ Forge = (*bitbucket.Client)(nil)
	_ Forge = (*Local)(nil)
)

// Options carries the non-credential settings a variant needs.
type Options struct {
	GitHubAPIURL    string
	BitbucketAPIURL string
	// HTTPClient is shared by the remote variants. Nil means a pooled
	// go-cleanhttp client.
	HTTPClient *http.Client

	// Local variant only.
	RepoDir    string
	BaseBranch string
	Pretty     bool
	Stdout     io.Writer
}

// New returns the Forge for res. It performs no I/O.
func New(res platform.Resolution, opts Options) (Forge, error) {
	switch res.Platform {
	case platform.GitHub:
		c, err := github.NewClient(res.Credentials, opts.GitHubAPIURL, opts.HTTPClient)
		if err != nil {
			return nil, err
		}
		return c, nil
	case platform.Bitbucket:
		return bitbucket.NewClient(res.Credentials, opts.BitbucketAPIURL, opts.HTTPClient), nil
	case platform.Local:
		return &Local{
			Repo:   gitctx.Repo{Dir: opts.RepoDir},
			Base:   opts.BaseBranch,
			Out:    opts.Stdout,
			Pretty: opts.Pretty,
		}, nil
	default:
		return nil, fmt.Errorf("no forge for platform %q", res.Platform)
	}
}
