// Package validate implements semantic validation over Part snapshots.
//
// Validation is non-fail-fast: every check runs regardless of earlier
// findings, and the full issue list comes back in a deterministic order
// (params in sorted name order, then features in declaration order, then
// chains in declaration order). An error-severity issue blocks export but
// never blocks further editing or rebuild attempts.
package validate
