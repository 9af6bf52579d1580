// Package dsl compiles part description text into IR and generates it
// back.
//
// The grammar is a single part block holding param, feature, and chain
// declarations, with sketch features carrying a nested geometry block.
// Parsing is single-pass recursive descent: any syntactic error stops
// compilation immediately with a CompileError carrying a 1-based
// line/column and an expected-vs-found description. The compiler never
// recovers or guesses, and it performs no semantic validation; duplicate
// names and dangling references are the validation engine's concern so
// that slightly malformed parts stay representable for display.
package dsl
