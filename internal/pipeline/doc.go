// Package pipeline runs one review: resolve the execution context, fetch the
// diff, generate the review, deliver it. The stages run once, in order, and
// the first error ends the run.
package pipeline
