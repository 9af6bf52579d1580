package dsl

import "fmt"

// CompileError is a fatal syntax error with a 1-based source position.
// Compilation never partially applies: the first error wins.
type CompileError struct {
	Line     int
	Col      int
	Expected string
	Found    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("line %d, col %d: expected %s, found %s", e.Line, e.Col, e.Expected, e.Found)
}
