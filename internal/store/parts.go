package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/partforge/partforge/internal/ir"
)

// PartInfo summarizes one stored snapshot.
type PartInfo struct {
	Hash      string
	Name      string
	CreatedAt string
}

// SavePart stores a part snapshot alongside its DSL source and returns the
// snapshot hash. Saving the same content twice is a no-op returning the
// same hash.
func (s *Store) SavePart(ctx context.Context, part *ir.Part, dslText string) (string, error) {
	hash, err := ir.PartHash(part)
	if err != nil {
		return "", fmt.Errorf("save part: %w", err)
	}
	irJSON, err := ir.MarshalCanonical(part)
	if err != nil {
		return "", fmt.Errorf("save part: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO parts (hash, name, dsl, ir)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, part.Name, dslText, string(irJSON))
	if err != nil {
		return "", fmt.Errorf("save part: %w", err)
	}
	return hash, nil
}

// LoadPart reads one snapshot by hash. Returns ErrNotFound when the hash
// is unknown.
func (s *Store) LoadPart(ctx context.Context, hash string) (*ir.Part, string, error) {
	var irJSON, dslText string
	err := s.db.QueryRowContext(ctx,
		`SELECT ir, dsl FROM parts WHERE hash = ?`, hash,
	).Scan(&irJSON, &dslText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("load part: %w", err)
	}

	var part ir.Part
	if err := json.Unmarshal([]byte(irJSON), &part); err != nil {
		return nil, "", fmt.Errorf("load part: decode ir: %w", err)
	}
	return &part, dslText, nil
}

// LatestPart reads the most recently saved snapshot with the given name.
func (s *Store) LatestPart(ctx context.Context, name string) (*ir.Part, string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT hash FROM parts
		WHERE name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, name).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("latest part: %w", err)
	}
	return s.LoadPart(ctx, hash)
}

// ListParts enumerates stored snapshots, newest first.
func (s *Store) ListParts(ctx context.Context) ([]PartInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, name, created_at FROM parts
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	var infos []PartInfo
	for rows.Next() {
		var info PartInfo
		if err := rows.Scan(&info.Hash, &info.Name, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("list parts: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
