// Package sketch implements the 2D constraint/DOF solver.
//
// The solver is a direct substitution solver, not a general nonlinear
// optimizer: constraints and dimensions rewrite entity coordinates in
// declaration order on a working copy, with bounded retry passes for
// ordering dependencies. It is a pure function over an immutable Sketch;
// callers receive either a fully solved copy or the original sketch plus
// issues, never a partially mutated one.
package sketch
