package kernel

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// HandleGenerator produces mesh handle ids.
type HandleGenerator interface {
	NewHandle() string
}

// UUIDGenerator generates time-sortable UUIDv7 handle ids.
//
// Stateless and safe for concurrent use.
type UUIDGenerator struct{}

// NewHandle returns a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails, which does not happen in practice.
func (UUIDGenerator) NewHandle() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns "prefix-1", "prefix-2", ... for deterministic
// tests and golden output comparison.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a counting generator with the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// NewHandle returns the next id in the sequence. Safe for concurrent use.
func (g *SequenceGenerator) NewHandle() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
