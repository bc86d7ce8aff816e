// Package notice defines the notice model shared by validation tasks and
// the bounded Recorder that aggregates them.
//
// # Data model
//
// Notice is a closed sum over two variants selected by Kind:
//
//   - KindValidation: produced by rule checks; any Severity.
//   - KindSystemError: produced by infrastructure failures; always SevError.
//
// Notices are counted and grouped by MappingKey, the (code, severity) pair.
// Its string form (code followed by severity) is the report ordering key.
//
// # Bounds
//
// A Recorder keeps two tiers of capacity:
//
//   - a global cap on retained validation notices; past it notices are
//     dropped without being counted;
//   - a per-key cap; past it notices are still counted but not stored.
//
// The true count per key therefore stays exact while memory stays bounded.
// System errors are exempt from both caps.
//
// # Ownership
//
// Recorders carry no locks. One task owns one Recorder for its lifetime and
// the join phase folds them together sequentially with Merge. Merge sums
// true counts and re-applies the destination's storage bounds.
package notice
