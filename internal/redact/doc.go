// Package redact removes credentials from text before it reaches stderr or
// logs.
//
// A [Scrubber] knows the literal credential values of the current run (forge
// tokens) and replaces them with [REDACTED]. On top of that, regex heuristics
// catch common token shapes: bearer headers, JWTs, GitHub and Bitbucket
// tokens, Anthropic keys, and user:password pairs embedded in URLs.
package redact
