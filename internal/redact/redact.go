package redact

import (
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// minValueLen keeps short, non-secret values (e.g. "1") from being scrubbed.
const minValueLen = 6

// secretPatterns are regex heuristics for token shapes that can leak into
// diagnostics: forge tokens, bearer headers, basic-auth URLs.
var secretPatterns = []*regexp.Regexp{
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._~+/=-]{20,}`),
	// Basic auth credentials embedded in URLs
	regexp.MustCompile(`://[^/\s:@]+:[^/\s@]+@`),
	// JWTs (three base64 segments separated by dots)
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// GitHub tokens (classic and fine-grained)
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
	// Bitbucket app passwords and access tokens
	regexp.MustCompile(`ATBB[A-Za-z0-9_=-]{20,}`),
	regexp.MustCompile(`ATCTT3x[A-Za-z0-9_=-]{20,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd)\s*[:=]\s*["']([^"']{8,})["']`),
}

// Secrets replaces detected secret shapes in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllStringFunc(result, func(match string) string {
			if strings.HasPrefix(match, "://") {
				return "://" + placeholder + "@"
			}
			return placeholder
		})
	}
	return result
}

// Values replaces every occurrence of the given literal values in text.
// Values shorter than a few characters are ignored.
func Values(text string, values ...string) string {
	for _, v := range values {
		if len(v) < minValueLen {
			continue
		}
		text = strings.ReplaceAll(text, v, placeholder)
	}
	return text
}

// Scrubber redacts known credential values and secret shapes.
type Scrubber struct {
	values []string
}

// NewScrubber returns a Scrubber that also removes the given literal values.
func NewScrubber(values ...string) *Scrubber {
	return &Scrubber{values: values}
}

// Add registers more literal values to remove.
func (s *Scrubber) Add(values ...string) {
	s.values = append(s.values, values...)
}

// Scrub applies Values then Secrets.
func (s *Scrubber) Scrub(text string) string {
	if s == nil {
		return Secrets(text)
	}
	return Secrets(Values(text, s.values...))
}
