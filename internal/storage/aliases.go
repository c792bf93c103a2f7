package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/lidayx/lumina-engine/pkg/types"
)

// InsertAlias persists a new alias row. Name is stored lowercase; the UNIQUE
// constraint backs the in-memory duplicate check.
func (s *Store) InsertAlias(ctx context.Context, a *types.Alias) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	query := `
		INSERT INTO aliases (id, name, command, type, description, created_at, use_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		a.ID, strings.ToLower(a.Name), a.Command, a.Type, a.Description, a.CreatedAt, a.UseCount)
	if err != nil {
		return fmt.Errorf("failed to insert alias: %w", err)
	}
	return nil
}

// DeleteAlias removes the row for name. Returns false when no row existed.
func (s *Store) DeleteAlias(ctx context.Context, name string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	result, err := db.ExecContext(ctx, `DELETE FROM aliases WHERE name = ?`, strings.ToLower(name))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateAlias rewrites the mutable fields of the row keyed by name.
func (s *Store) UpdateAlias(ctx context.Context, a *types.Alias) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	query := `
		UPDATE aliases
		SET command = ?, type = ?, description = ?
		WHERE name = ?
	`
	_, err = db.ExecContext(ctx, query, a.Command, a.Type, a.Description, strings.ToLower(a.Name))
	if err != nil {
		return fmt.Errorf("failed to update alias: %w", err)
	}
	return nil
}

// ListAliases returns every alias row ordered by use_count desc,
// created_at desc.
func (s *Store) ListAliases(ctx context.Context) ([]types.Alias, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query := `
		SELECT id, name, command, type, description, created_at, use_count
		FROM aliases
		ORDER BY use_count DESC, created_at DESC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]types.Alias, 0)
	for rows.Next() {
		var a types.Alias
		if err := rows.Scan(&a.ID, &a.Name, &a.Command, &a.Type, &a.Description, &a.CreatedAt, &a.UseCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAliasUseCounts writes a batch of debounced usage counters in one
// transaction. Only the latest count per name is ever persisted; rows for
// names removed since the events were queued simply update nothing.
func (s *Store) UpdateAliasUseCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for name, count := range counts {
		if _, err := tx.ExecContext(ctx,
			`UPDATE aliases SET use_count = ? WHERE name = ?`, count, strings.ToLower(name)); err != nil {
			return fmt.Errorf("failed to update use count for %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
