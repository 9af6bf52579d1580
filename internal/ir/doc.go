// Package ir provides the intermediate representation for parametric parts.
//
// This package contains value types only. All other internal packages import
// ir; ir imports nothing internal. This keeps the IR the foundational layer
// with no circular dependencies.
//
// Key design constraints:
//   - A Part snapshot is treated as an immutable value. Edits go through
//     Clone(); nothing mutates a Part that has been handed to a rebuild.
//   - JSON field names are frozen: existing consumers serialize this exact
//     shape (snake_case except the historical "isConstruction" flag).
//   - Duck-typed "type" strings from the wire become closed enum types here,
//     exhaustively switched wherever behavior depends on them.
package ir
