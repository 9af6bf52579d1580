package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/partforge/partforge/internal/rebuild"
)

// SaveResult caches a rebuild result under its snapshot hash. The snapshot
// must already be saved; saving a result twice for the same hash is a
// no-op.
func (s *Store) SaveResult(ctx context.Context, res *rebuild.Result) error {
	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rebuild_results (part_hash, result)
		VALUES (?, ?)
		ON CONFLICT(part_hash) DO NOTHING
	`, res.PartHash, string(blob))
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// LoadResult reads the cached rebuild result for a snapshot hash. Returns
// ErrNotFound when no result was cached for it.
func (s *Store) LoadResult(ctx context.Context, partHash string) (*rebuild.Result, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM rebuild_results WHERE part_hash = ?`, partHash,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}

	var res rebuild.Result
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, fmt.Errorf("load result: decode: %w", err)
	}
	return &res, nil
}
