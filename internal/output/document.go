package output

import "unicode/utf8"

// DefaultMaxLength is the default cap on a delivery document, in characters.
// It stays under GitHub's 65536-character comment limit.
const DefaultMaxLength = 65000

const (
	// Header opens every delivery document.
	Header = "## Automated Code Review\n\n"
	// Footer closes every delivery document.
	Footer = "\n\n---\n_Generated automatically by prism-ci. Verify suggestions before applying them._\n"
	// TruncationNotice is appended after a document is cut to the cap, so a
	// truncated document is longer than the cap by exactly its length.
	TruncationNotice = "\n\n---\n_Review truncated: the output exceeded the maximum comment length._\n"
	// NoChangesMessage replaces the review when the diff is empty.
	NoChangesMessage = "No changes detected: the diff against the base is empty, so there is nothing to review."
)

// Format wraps body with Header and Footer. If the result is longer than
// maxLen characters it is cut to exactly maxLen characters, TruncationNotice
// is appended and truncated is true. maxLen <= 0 disables the cap.
func Format(body string, maxLen int) (doc string, truncated bool) {
	doc = Header + body + Footer
	if maxLen <= 0 || utf8.RuneCountInString(doc) <= maxLen {
		return doc, false
	}
	return truncateRunes(doc, maxLen) + TruncationNotice, true
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
