// Package output turns review text into the delivery document and ships it.
//
// [Format] wraps the review in a fixed [Header] and [Footer] and enforces the
// maximum comment length: an over-long document is cut to exactly the cap and
// [TruncationNotice] is appended after the cut, so a truncated document
// exceeds the cap by the notice's length.
//
// [Delivery.Deliver] writes the document to the artifact path (overwriting
// any previous run) before posting it to a [Sink], so a failed post leaves
// the review on disk.
package output
