package output

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultArtifactPath is where the last delivery document is written.
const DefaultArtifactPath = "prism-review.md"

// Sink receives the final delivery document.
type Sink interface {
	Post(ctx context.Context, doc string) error
}

// Delivery formats a review, persists it, and hands it to a sink.
type Delivery struct {
	ArtifactPath string
	MaxLength    int
	Logger       *slog.Logger
}

// Deliver formats body into the delivery document, overwrites the artifact
// with it, then posts it to sink. The artifact is written before the sink is
// tried, so a failed post never loses the review. The document and whether
// it was truncated are returned even on error.
func (d Delivery) Deliver(ctx context.Context, body string, sink Sink) (doc string, truncated bool, err error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	doc, truncated = Format(body, d.MaxLength)
	if truncated {
		logger.Info("review truncated to maximum comment length", "max_length", d.MaxLength)
	}

	if d.ArtifactPath != "" {
		if err := WriteArtifact(d.ArtifactPath, doc); err != nil {
			return doc, truncated, err
		}
		logger.Debug("artifact written", "path", d.ArtifactPath, "bytes", len(doc))
	}

	if err := sink.Post(ctx, doc); err != nil {
		return doc, truncated, err
	}
	return doc, truncated, nil
}

// ArtifactError reports that the review artifact could not be written.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("writing review artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// WriteArtifact replaces the file at path with doc, creating parent
// directories as needed. Concurrent writers are not coordinated.
func WriteArtifact(path, doc string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ArtifactError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	return nil
}
