// Package engine ties the query pipeline together: alias resolution first,
// then the catalog search path with scoring, ranking and a result cache on
// top of the durable store.
package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/lidayx/lumina-engine/internal/alias"
	"github.com/lidayx/lumina-engine/internal/scorer"
	"github.com/lidayx/lumina-engine/internal/storage"
	"github.com/lidayx/lumina-engine/pkg/types"
)

// Engine is the query resolution and ranking facade. A not-yet-ready store
// never fails a query: reads degrade to empty results and writes are logged
// and skipped until initialization succeeds.
type Engine struct {
	cfg Config
	log *zap.Logger

	store   *storage.Store
	aliases *alias.Table
	cache   *lru.Cache[[32]byte, []types.SearchResult]
}

// NewEngine wires the storage, alias table and result cache. The store is not
// opened until Init.
func NewEngine(cfg Config, log *zap.Logger) (*Engine, error) {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := lru.New[[32]byte, []types.SearchResult](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	store := storage.New(cfg.DBPath, log)
	return &Engine{
		cfg:     cfg,
		log:     log,
		store:   store,
		aliases: alias.NewTable(store, log, cfg.FlushDelay),
		cache:   cache,
	}, nil
}

// Init opens the store and loads the alias table into memory.
func (e *Engine) Init(ctx context.Context) error {
	if e.cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(e.cfg.DBPath), 0o755); err != nil {
			return err
		}
	}
	if err := e.store.Init(ctx); err != nil {
		return err
	}
	return e.aliases.Load(ctx)
}

// ensureReady retries initialization once if the store is not ready yet.
// Reports whether the store can be used.
func (e *Engine) ensureReady(ctx context.Context) bool {
	if e.store.Ready() {
		return true
	}
	if err := e.Init(ctx); err != nil {
		e.log.Warn("store not ready", zap.Error(err))
		return false
	}
	return true
}

// Query resolves input against the alias table first; on a hit the response
// carries only the resolved command chain. Otherwise the catalog is searched,
// each candidate is re-scored with the full signal set, and the ranked list
// is cached keyed by (query, type).
func (e *Engine) Query(ctx context.Context, input, itemType string) (*types.QueryResponse, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return &types.QueryResponse{Results: []types.SearchResult{}}, nil
	}

	if res, ok := e.aliases.Resolve(input); ok {
		return &types.QueryResponse{Results: []types.SearchResult{}, Resolution: res}, nil
	}

	key := cacheKey(input, itemType)
	if cached, ok := e.cache.Get(key); ok {
		return &types.QueryResponse{Results: cached, CacheHit: true}, nil
	}

	if !e.ensureReady(ctx) {
		return &types.QueryResponse{Results: []types.SearchResult{}}, nil
	}
	candidates, err := e.store.SearchItems(ctx, input, itemType)
	if err != nil {
		if errors.Is(err, types.ErrNotReady) {
			return &types.QueryResponse{Results: []types.SearchResult{}}, nil
		}
		return nil, err
	}

	results := e.rank(input, candidates)
	e.cache.Add(key, results)
	return &types.QueryResponse{Results: results}, nil
}

// rank re-scores the coarse candidate set with the full signal set and sorts
// by score. The sort is stable: the storage ordering (name-prefix, keyword-
// prefix, usage) already breaks ties the way the user expects.
func (e *Engine) rank(query string, candidates []*types.CatalogItem) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(candidates))
	for _, item := range candidates {
		keywords := strings.Fields(item.SearchKeywords)
		best := scorer.Score(query, item.Name, keywords)
		for _, name := range []string{item.NameEn, item.NameCn} {
			if name == "" {
				continue
			}
			if r := scorer.Score(query, name, keywords); r.Score > best.Score {
				best = r
			}
		}
		if best.Score <= 0 {
			continue
		}
		results = append(results, types.SearchResult{
			Item:    *item,
			Score:   best.Score,
			Reasons: best.Reasons,
			Source:  types.SourceCatalog,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// RecordLaunch persists one launch of the item and invalidates cached
// rankings. When the store is unavailable the event is logged and dropped.
func (e *Engine) RecordLaunch(ctx context.Context, id string) error {
	if !e.ensureReady(ctx) {
		e.log.Warn("launch not recorded, store unavailable", zap.String("id", id))
		return nil
	}
	if err := e.store.UpdateItemUsage(ctx, id); err != nil {
		return err
	}
	e.cache.Purge()
	return nil
}

// IndexItems upserts a batch of catalog items and invalidates the cache.
// When the store is unavailable the batch is logged and dropped; the indexing
// collaborator re-supplies the full snapshot on its next pass.
func (e *Engine) IndexItems(ctx context.Context, items []*types.CatalogItem) error {
	if !e.ensureReady(ctx) {
		e.log.Warn("index batch not persisted, store unavailable", zap.Int("count", len(items)))
		return nil
	}
	if err := e.store.BatchUpsertItems(ctx, items); err != nil {
		return err
	}
	e.cache.Purge()
	return nil
}

// GetItem returns one catalog item by id. An unavailable store reads as
// absence, which callers must treat as potentially transient.
func (e *Engine) GetItem(ctx context.Context, id string) (*types.CatalogItem, error) {
	if !e.ensureReady(ctx) {
		return nil, types.ErrNotFound
	}
	return e.store.GetItemByID(ctx, id)
}

// ListItems returns catalog items, optionally filtered by type.
func (e *Engine) ListItems(ctx context.Context, itemType string) ([]*types.CatalogItem, error) {
	if !e.ensureReady(ctx) {
		return []*types.CatalogItem{}, nil
	}
	return e.store.ListItems(ctx, itemType)
}

// ClearType removes every item of the given type and invalidates the cache.
func (e *Engine) ClearType(ctx context.Context, itemType string) (int, error) {
	if !e.ensureReady(ctx) {
		e.log.Warn("clear skipped, store unavailable", zap.String("type", itemType))
		return 0, nil
	}
	n, err := e.store.ClearItemsByType(ctx, itemType)
	if err != nil {
		return 0, err
	}
	e.cache.Purge()
	return n, nil
}

// PruneStale removes items older than the retention window that are absent
// from the current index snapshot.
func (e *Engine) PruneStale(ctx context.Context, currentIDs []string) (int, error) {
	if !e.ensureReady(ctx) {
		e.log.Warn("prune skipped, store unavailable")
		return 0, nil
	}
	n, err := e.store.ClearOldItems(ctx, currentIDs, e.cfg.RetentionDays)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.cache.Purge()
	}
	return n, nil
}

// Stats returns catalog statistics; zero counts when the store is unavailable.
func (e *Engine) Stats(ctx context.Context) (*types.CatalogStats, error) {
	if !e.ensureReady(ctx) {
		return &types.CatalogStats{}, nil
	}
	return e.store.Stats(ctx)
}

// ListTypes returns the item type enumeration.
func (e *Engine) ListTypes(ctx context.Context) ([]types.ItemType, error) {
	if !e.ensureReady(ctx) {
		return []types.ItemType{}, nil
	}
	return e.store.ListTypes(ctx)
}

// AddAlias registers a new alias.
func (e *Engine) AddAlias(ctx context.Context, name, command, aliasType, description string) (types.Alias, error) {
	return e.aliases.Add(ctx, name, command, aliasType, description)
}

// RemoveAlias deletes an alias; reports whether it existed.
func (e *Engine) RemoveAlias(ctx context.Context, name string) bool {
	return e.aliases.Remove(ctx, name)
}

// UpdateAlias applies a partial update to an alias.
func (e *Engine) UpdateAlias(ctx context.Context, name string, upd types.AliasUpdate) (types.Alias, error) {
	return e.aliases.Update(ctx, name, upd)
}

// ListAliases returns all aliases ordered by usage.
func (e *Engine) ListAliases() []types.Alias {
	return e.aliases.All()
}

// Flush forces pending debounced writes to disk.
func (e *Engine) Flush() {
	e.aliases.Flush()
}

// Close drains pending writes and closes the store.
func (e *Engine) Close() error {
	e.aliases.Close()
	return e.store.Close()
}

func cacheKey(query, itemType string) [32]byte {
	return sha256.Sum256([]byte(itemType + "\x00" + strings.ToLower(query)))
}
