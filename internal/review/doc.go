// Package review builds the review request and runs the external review
// generator.
//
// [BuildRequest] prefixes the diff with a fixed instruction covering defects,
// security, performance, code quality and test coverage, and fences the diff
// as a code block. The diff itself is never inspected.
//
// [Generator] treats the review tool as an opaque text-in/text-out process.
// Because tools differ in how they accept a prompt, it pipes the request on
// stdin first and, if that fails or prints nothing, passes it once more as a
// command-line argument. Two empty attempts yield [*EmptyReviewError].
package review
