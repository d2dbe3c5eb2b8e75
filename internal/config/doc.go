// Package config loads and merges prism-ci configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PRISM_PLATFORM, PRISM_GENERATOR_CMD, PRISM_ARTIFACT_PATH, etc.)
//  3. Config file ($XDG_CONFIG_HOME/prism-ci/config.toml, or --config with a
//     .toml, .yaml or .json extension)
//  4. Built-in defaults
//
// Forge credentials never pass through this package; they are read from the
// environment by the platform resolver.
package config
