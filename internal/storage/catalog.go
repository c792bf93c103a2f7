package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lidayx/lumina-engine/pkg/types"
)

const (
	// SearchLimit bounds coarse search results
	SearchLimit = 50
	// DefaultMaxAgeDays is the retention window for stale items
	DefaultMaxAgeDays = 7
)

const itemColumns = `id, type, name, name_en, name_cn, path, icon, description, category,
       launch_count, last_used, score, search_keywords, indexed_at`

// UpsertItem inserts the item or, when a row with the same id exists,
// replaces its display fields. Usage counters (launch_count, last_used,
// score) survive a re-upsert: reindexing must not erase accumulated feedback.
func (s *Store) UpsertItem(ctx context.Context, item *types.CatalogItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return err
	}
	return upsertItem(ctx, db, item)
}

// BatchUpsertItems applies all items inside one transaction with a single
// commit. Persistence cost is dominated by the commit, so per-row
// transactions would make a full reindex quadratic in practice.
func (s *Store) BatchUpsertItems(ctx context.Context, items []*types.CatalogItem) error {
	if len(items) == 0 {
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

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if err := upsertItem(ctx, tx, item); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertItem(ctx context.Context, q querier, item *types.CatalogItem) error {
	query := `
		INSERT INTO items (id, type, name, name_en, name_cn, path, icon, description, category,
		                   launch_count, last_used, score, search_keywords, indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			name_en = excluded.name_en,
			name_cn = excluded.name_cn,
			path = excluded.path,
			icon = excluded.icon,
			description = excluded.description,
			category = excluded.category,
			search_keywords = excluded.search_keywords,
			indexed_at = excluded.indexed_at,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	indexedAt := item.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = now
	}
	var lastUsed interface{}
	if item.LastUsed != nil {
		lastUsed = *item.LastUsed
	}
	_, err := q.ExecContext(ctx, query,
		item.ID, item.Type, item.Name, item.NameEn, item.NameCn,
		item.Path, item.Icon, item.Description, item.Category,
		item.LaunchCount, lastUsed, item.Score, item.SearchKeywords,
		indexedAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// GetItemByID returns the item or ErrNotFound.
func (s *Store) GetItemByID(ctx context.Context, id string) (*types.CatalogItem, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns all items, optionally restricted to one type, ordered by
// score desc, launch_count desc, last_used desc.
func (s *Store) ListItems(ctx context.Context, itemType string) ([]*types.CatalogItem, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + itemColumns + ` FROM items`
	args := make([]interface{}, 0, 1)
	if itemType != "" {
		query += ` WHERE type = ?`
		args = append(args, itemType)
	}
	query += ` ORDER BY score DESC, launch_count DESC, last_used DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanItems(rows)
}

// SearchItems applies the coarse substring filter over the display fields and
// returns at most SearchLimit rows. Ordering is the storage-level tie-break
// chain: name-prefix hits first, then keyword-prefix hits, then score desc,
// then launch_count desc. Fine-grained re-ranking is the caller's concern.
func (s *Store) SearchItems(ctx context.Context, searchQuery, itemType string) ([]*types.CatalogItem, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(searchQuery))
	if q == "" {
		return []*types.CatalogItem{}, nil
	}
	// The query is a literal substring, not a pattern.
	esc := escapeLike(q)
	pattern := "%" + esc + "%"
	prefix := esc + "%"
	kwMid := "% " + esc + "%"

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE (lower(name) LIKE ? ESCAPE '\' OR lower(name_en) LIKE ? ESCAPE '\'
		       OR lower(name_cn) LIKE ? ESCAPE '\'
		       OR lower(description) LIKE ? ESCAPE '\' OR lower(search_keywords) LIKE ? ESCAPE '\')
	`
	args := []interface{}{pattern, pattern, pattern, pattern, pattern}
	if itemType != "" {
		query += ` AND type = ?`
		args = append(args, itemType)
	}
	query += `
		ORDER BY
			CASE WHEN lower(name) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END,
			CASE WHEN lower(search_keywords) LIKE ? ESCAPE '\' OR lower(search_keywords) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END,
			score DESC,
			launch_count DESC
		LIMIT ?
	`
	args = append(args, prefix, prefix, kwMid, SearchLimit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanItems(rows)
}

// UpdateItemUsage records one launch: launch_count += 1, last_used = now,
// score += the fixed increment. Persisted immediately; this path is
// user-selection frequency, not keystroke frequency.
func (s *Store) UpdateItemUsage(ctx context.Context, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	query := `
		UPDATE items
		SET launch_count = launch_count + 1,
		    last_used = ?,
		    score = score + ?,
		    updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, now, types.UsageScoreIncrement, now, id)
	if err != nil {
		return fmt.Errorf("failed to update item usage: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteItem removes one item; deleting a missing id is not an error.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return err
}

// ClearItemsByType removes every item of the given type and returns the count.
func (s *Store) ClearItemsByType(ctx context.Context, itemType string) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE type = ?`, itemType)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// ClearOldItems removes items whose indexed_at predates the cutoff AND whose
// id is absent from the caller's current snapshot. An old item that is still
// discoverable (present in currentIDs) is retained; only entries the indexer
// no longer sees age out.
func (s *Store) ClearOldItems(ctx context.Context, currentIDs []string, maxAgeDays int) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultMaxAgeDays
	}
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	rows, err := db.QueryContext(ctx,
		`SELECT id FROM items WHERE indexed_at IS NOT NULL AND indexed_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	current := make(map[string]struct{}, len(currentIDs))
	for _, id := range currentIDs {
		current[id] = struct{}{}
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, err
		}
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	_ = rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}
	return s.deleteItemsBatch(ctx, db, stale)
}

// deleteItemsBatch deletes ids in chunks with parameterized IN clauses.
func (s *Store) deleteItemsBatch(ctx context.Context, db *sql.DB, ids []string) (int, error) {
	const chunkSize = 500
	deleted := 0
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			placeholders[i] = "?"
			args[i] = id
		}
		query := `DELETE FROM items WHERE id IN (` + strings.Join(placeholders, ",") + `)`
		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return deleted, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return deleted, err
		}
		deleted += int(affected)
	}
	return deleted, nil
}

// Stats returns the total item count plus per-type counts.
func (s *Store) Stats(ctx context.Context) (*types.CatalogStats, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	stats := &types.CatalogStats{}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&stats.TotalItems); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM items GROUP BY type ORDER BY COUNT(*) DESC, type`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var tc types.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		stats.TypeStats = append(stats.TypeStats, tc)
	}
	return stats, rows.Err()
}

// ListTypes returns the item type descriptors in seed order.
func (s *Store) ListTypes(ctx context.Context) ([]types.ItemType, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT type, label, icon, description FROM item_types ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]types.ItemType, 0)
	for rows.Next() {
		var it types.ItemType
		if err := rows.Scan(&it.Type, &it.Label, &it.Icon, &it.Description); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// escapeLike neutralizes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(r rowScanner) (*types.CatalogItem, error) {
	var (
		item      types.CatalogItem
		lastUsed  sql.NullTime
		indexedAt sql.NullTime
		keywords  sql.NullString
	)
	err := r.Scan(
		&item.ID, &item.Type, &item.Name, &item.NameEn, &item.NameCn,
		&item.Path, &item.Icon, &item.Description, &item.Category,
		&item.LaunchCount, &lastUsed, &item.Score, &keywords, &indexedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		item.LastUsed = &t
	}
	if indexedAt.Valid {
		item.IndexedAt = indexedAt.Time
	}
	if keywords.Valid {
		item.SearchKeywords = keywords.String
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*types.CatalogItem, error) {
	items := make([]*types.CatalogItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
