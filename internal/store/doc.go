// Package store provides durable storage for part snapshots and rebuild
// results.
//
// SQLite with WAL mode backs the store. Snapshots are content-addressed:
// the canonical-JSON hash of the IR keys both the snapshot row and its
// cached rebuild result, so an unchanged part never rebuilds and a saved
// result is trivially matched back to the exact snapshot that produced it.
package store
