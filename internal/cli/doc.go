// Package cli wires together the Cobra command tree for the prism-ci binary.
//
// It defines the root command and its subcommands (run, check, config,
// version), binds flags onto configuration overrides, runs the review
// pipeline, and maps failures onto distinct exit codes so CI logs show which
// stage broke.
package cli
