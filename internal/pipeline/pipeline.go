package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/prism-ci/internal/config"
	"github.com/dshills/prism-ci/internal/forge"
	"github.com/dshills/prism-ci/internal/output"
	"github.com/dshills/prism-ci/internal/platform"
	"github.com/dshills/prism-ci/internal/review"
)

// ReviewGenerator turns a review request into review text.
type ReviewGenerator interface {
	Generate(ctx context.Context, request string) (string, error)
}

// ForgeFactory builds the Forge for a resolved execution context.
type ForgeFactory func(platform.Resolution, forge.Options) (forge.Forge, error)

// Pipeline holds everything one run needs. Zero-valued collaborators fall
// back to the real implementations.
type Pipeline struct {
	Config config.Config
	// Getenv supplies credentials. Nil means os.Getenv.
	Getenv func(string) string
	// NewForge defaults to forge.New.
	NewForge ForgeFactory
	// Generator defaults to the command in Config.Generator.
	Generator ReviewGenerator
	// Stdout receives the document in the local context.
	Stdout     io.Writer
	RepoDir    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Result describes a completed run.
type Result struct {
	RunID     string
	Platform  platform.Platform
	NoChanges bool
	Truncated bool
	// Document is the delivery document, set whenever formatting happened,
	// even if delivery then failed.
	Document     string
	ArtifactPath string
	Secrets      []string
}

// Run executes the pipeline. The returned Result is never nil; on error it
// holds whatever was learned before the failure.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), ArtifactPath: p.Config.ArtifactPath}
	logger := p.logger().With("run", res.RunID)
	start := time.Now()

	if err := p.Config.Validate(); err != nil {
		return res, &platform.ConfigurationError{Reason: err.Error()}
	}

	resolution, err := platform.Resolve(p.Config.Platform, p.getenv())
	if err != nil {
		return res, err
	}
	res.Platform = resolution.Platform
	res.Secrets = resolution.Secrets()
	logger = logger.With("platform", string(resolution.Platform))
	logger.Debug("execution context resolved")

	newForge := p.NewForge
	if newForge == nil {
		newForge = forge.New
	}
	f, err := newForge(resolution, forge.Options{
		GitHubAPIURL:    p.Config.GitHub.APIURL,
		BitbucketAPIURL: p.Config.Bitbucket.APIURL,
		HTTPClient:      p.HTTPClient,
		RepoDir:         p.RepoDir,
		BaseBranch:      p.Config.BaseBranch,
		Pretty:          p.Config.Pretty,
		Stdout:          p.Stdout,
	})
	if err != nil {
		return res, err
	}

	diff, err := f.FetchDiff(ctx)
	if err != nil {
		return res, err
	}
	logger.Debug("diff fetched", "bytes", len(diff))

	var body string
	if strings.TrimSpace(diff) == "" {
		res.NoChanges = true
		body = output.NoChangesMessage
		logger.Info("no changes to review")
	} else {
		body, err = p.generator(logger).Generate(ctx, review.BuildRequest(diff))
		if err != nil {
			return res, err
		}
		logger.Debug("review generated", "bytes", len(body))
	}

	delivery := output.Delivery{
		ArtifactPath: p.Config.ArtifactPath,
		MaxLength:    p.Config.MaxCommentLength,
		Logger:       logger,
	}
	res.Document, res.Truncated, err = delivery.Deliver(ctx, body, f)
	if err != nil {
		return res, err
	}

	logger.Info("review delivered",
		"artifact", p.Config.ArtifactPath,
		"truncated", res.Truncated,
		"duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (p *Pipeline) generator(logger *slog.Logger) ReviewGenerator {
	if p.Generator != nil {
		return p.Generator
	}
	return review.NewGenerator(p.Config.Generator.Command, p.Config.Generator.Args, logger)
}

func (p *Pipeline) getenv() func(string) string {
	if p.Getenv != nil {
		return p.Getenv
	}
	return os.Getenv
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
