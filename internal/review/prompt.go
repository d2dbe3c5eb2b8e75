package review

import "strings"

const instructionTemplate = `You are an experienced senior engineer reviewing a pull request. Review the unified diff below and report on:

1. **Defects**: logic errors, incorrect edge-case handling, broken error handling, race conditions.
2. **Security**: injection, unsafe input handling, leaked secrets or credentials, missing authorization checks.
3. **Performance**: unnecessary allocations, quadratic loops, blocking calls on hot paths, N+1 queries.
4. **Code quality**: readability, naming, duplication, dead code, consistency with the surrounding code.
5. **Test coverage**: changed behavior that lacks tests, and tests that do not assert what they claim.

Formatting instructions:
- Respond in GitHub-flavored markdown.
- Start with a one-paragraph summary of the change.
- Group findings under a heading per dimension above; omit a heading that has no findings.
- For each finding, name the file and line from the diff, state the problem, and suggest a concrete fix.
- Only comment on lines that were changed. Do not restate the diff.
- If there is nothing worth changing, say so briefly.

The diff to review:`

// Instruction returns the fixed review instruction that precedes the diff.
func Instruction() string {
	return instructionTemplate
}

// BuildRequest concatenates the instruction with the diff fenced as a code
// block. The diff is included verbatim.
func BuildRequest(diff string) string {
	var b strings.Builder
	b.Grow(len(instructionTemplate) + len(diff) + 32)
	b.WriteString(instructionTemplate)
	b.WriteString("\n\n```diff\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}
