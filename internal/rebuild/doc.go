// Package rebuild orchestrates a full part rebuild: validation, feature
// dependency ordering, kernel delegation, and tolerance evaluation.
//
// A rebuild is pure over its Part snapshot. The only blocking work is the
// kernel collaborator, so cancellation is checked between per-feature
// kernel calls and results are cached by content hash; rebuilding an
// unchanged part is free. A kernel failure on one feature never aborts
// siblings, only its own dependents.
package rebuild
