package review

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Shape is how the review request is handed to the generator.
type Shape string

const (
	// ShapeStdin pipes the request on standard input.
	ShapeStdin Shape = "stdin"
	// ShapeArgument passes the request as the final command-line argument.
	ShapeArgument Shape = "argument"
)

// maxLoggedStderr caps how much generator stderr reaches debug logs.
const maxLoggedStderr = 4096

// Runner executes a command and returns its stdout and stderr separately.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// EmptyReviewError reports that neither invocation shape produced a review.
type EmptyReviewError struct {
	Command     string
	StdinErr    error
	ArgumentErr error
}

func (e *EmptyReviewError) Error() string {
	return fmt.Sprintf("review generator %q produced no output (stdin attempt: %s; argument attempt: %s)",
		e.Command, describeAttempt(e.StdinErr), describeAttempt(e.ArgumentErr))
}

func describeAttempt(err error) string {
	if err == nil {
		return "empty output"
	}
	return err.Error()
}

// Generator invokes the external review tool. It tries ShapeStdin first and
// falls back to ShapeArgument once; there are no further attempts.
type Generator struct {
	Command string
	Args    []string
	Runner  Runner
	Logger  *slog.Logger
}

// NewGenerator returns a Generator that runs command with args via os/exec.
func NewGenerator(command string, args []string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		Command: command,
		Args:    args,
		Runner:  ExecRunner{},
		Logger:  logger,
	}
}

// Generate returns the generator's standard output for request. Trailing
// newlines are trimmed; stderr is discarded.
func (g *Generator) Generate(ctx context.Context, request string) (string, error) {
	out, stdinErr := g.attempt(ctx, ShapeStdin, request)
	if stdinErr == nil && out != "" {
		return out, nil
	}
	g.logger().Debug("review generator stdin attempt unusable, passing request as argument",
		"command", g.Command, "error", stdinErr)

	out, argErr := g.attempt(ctx, ShapeArgument, request)
	if argErr == nil && out != "" {
		return out, nil
	}

	return "", &EmptyReviewError{
		Command:     g.Command,
		StdinErr:    stdinErr,
		ArgumentErr: argErr,
	}
}

func (g *Generator) attempt(ctx context.Context, shape Shape, request string) (string, error) {
	runner := g.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	args := append([]string(nil), g.Args...)
	var stdin io.Reader
	switch shape {
	case ShapeStdin:
		stdin = strings.NewReader(request)
	case ShapeArgument:
		args = append(args, request)
	}

	stdout, stderr, err := runner.Run(ctx, stdin, g.Command, args...)
	g.logger().Debug("review generator finished",
		"shape", string(shape),
		"stdout_bytes", len(stdout),
		"stderr", truncateForLog(stderr),
		"error", err)
	if err != nil {
		return "", fmt.Errorf("%s: %w", shape, err)
	}

	out := strings.TrimRight(string(stdout), "\r\n")
	if strings.TrimSpace(out) == "" {
		return "", nil
	}
	return out, nil
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return g.Logger
}

func truncateForLog(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxLoggedStderr {
		return s[:maxLoggedStderr] + "..."
	}
	return s
}
