package rebuild

import (
	"context"
	"errors"
	"sync"

	"github.com/partforge/partforge/internal/ir"
)

// ErrSuperseded reports that a newer snapshot arrived while this rebuild
// was in flight; its result was discarded, never partially applied.
var ErrSuperseded = errors.New("rebuild superseded by a newer snapshot")

// Session serializes rebuilds for one displayed part with latest-wins
// semantics: submitting a new snapshot cancels whatever rebuild is in
// flight, and a stale rebuild that slips through to completion is
// discarded. At most one in-flight result is ever trusted.
//
// Different parts should use different sessions; there are no cross-part
// locks.
type Session struct {
	orch *Orchestrator

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewSession wraps an orchestrator with latest-wins submission.
func NewSession(orch *Orchestrator) *Session {
	return &Session{orch: orch}
}

// Rebuild submits a snapshot. It returns ErrSuperseded when a newer
// snapshot displaced this one, the ctx error when the caller's own context
// ended, and the rebuild result otherwise.
func (s *Session) Rebuild(ctx context.Context, part *ir.Part) (*Result, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	mine := s.gen
	s.mu.Unlock()

	defer cancel()

	res, err := s.orch.Rebuild(runCtx, part)

	s.mu.Lock()
	stale := s.gen != mine
	s.mu.Unlock()

	switch {
	case stale:
		return nil, ErrSuperseded
	case err != nil:
		return nil, err
	default:
		return res, nil
	}
}
