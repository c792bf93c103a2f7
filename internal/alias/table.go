// Package alias maintains the user-defined alias table: an in-memory,
// lowercase-keyed mirror that serves every read, backed by the durable store.
// Mutations hit memory first; the store is written through, and a persistence
// failure is logged without rolling back the in-memory state, so the running
// session keeps behaving as the user asked even when the disk does not
// cooperate. Usage counters take the write-behind path through a debounced
// batch writer.
package alias

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lidayx/lumina-engine/internal/debounce"
	"github.com/lidayx/lumina-engine/internal/storage"
	"github.com/lidayx/lumina-engine/pkg/types"
)

// flushTimeout bounds the background use-count write.
const flushTimeout = 5 * time.Second

// Table is the alias registry. All reads are served from memory; Load must
// run once after the store is ready.
type Table struct {
	store *storage.Store
	log   *zap.Logger

	mu     sync.RWMutex
	byName map[string]types.Alias
	sorted []types.Alias // usage-ordered cache, nil when stale

	writer *debounce.Writer[string, int64]
}

// NewTable creates a Table backed by store. flushDelay is the quiet period
// for the debounced use-count writer; non-positive means the default.
func NewTable(store *storage.Store, log *zap.Logger, flushDelay time.Duration) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Table{
		store:  store,
		log:    log,
		byName: make(map[string]types.Alias),
	}
	t.writer = debounce.NewWriter[string, int64](flushDelay, t.flushUseCounts)
	return t
}

// Load replaces the in-memory table with the persisted rows.
func (t *Table) Load(ctx context.Context) error {
	rows, err := t.store.ListAliases(ctx)
	if err != nil {
		return fmt.Errorf("failed to load aliases: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byName = make(map[string]types.Alias, len(rows))
	for _, a := range rows {
		t.byName[strings.ToLower(a.Name)] = a
	}
	t.sorted = nil
	t.log.Debug("aliases loaded", zap.Int("count", len(rows)))
	return nil
}

// Add registers a new alias. The name is trimmed and lowercased; an existing
// name yields ErrAlreadyExists. The alias type defaults to "command".
func (t *Table) Add(ctx context.Context, name, command, aliasType, description string) (types.Alias, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	command = strings.TrimSpace(command)
	if name == "" {
		return types.Alias{}, types.ErrEmptyName
	}
	if command == "" {
		return types.Alias{}, types.ErrEmptyCommand
	}
	if aliasType == "" {
		aliasType = types.AliasCommand
	}

	a := types.Alias{
		ID:          newAliasID(),
		Name:        name,
		Command:     command,
		Type:        aliasType,
		Description: description,
		CreatedAt:   time.Now(),
	}

	t.mu.Lock()
	if _, exists := t.byName[name]; exists {
		t.mu.Unlock()
		return types.Alias{}, types.ErrAlreadyExists
	}
	t.byName[name] = a
	t.sorted = nil
	t.mu.Unlock()

	if err := t.store.InsertAlias(ctx, &a); err != nil {
		// Memory stays authoritative for the session.
		t.log.Warn("failed to persist alias", zap.String("name", name), zap.Error(err))
	}
	return a, nil
}

// Remove deletes the alias; reports whether it existed.
func (t *Table) Remove(ctx context.Context, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))

	t.mu.Lock()
	_, existed := t.byName[name]
	delete(t.byName, name)
	t.sorted = nil
	t.mu.Unlock()

	if _, err := t.store.DeleteAlias(ctx, name); err != nil {
		t.log.Warn("failed to delete persisted alias", zap.String("name", name), zap.Error(err))
	}
	return existed
}

// Update applies the non-nil fields of upd to the named alias.
func (t *Table) Update(ctx context.Context, name string, upd types.AliasUpdate) (types.Alias, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	t.mu.Lock()
	a, ok := t.byName[name]
	if !ok {
		t.mu.Unlock()
		return types.Alias{}, types.ErrNotFound
	}
	if upd.Command != nil {
		command := strings.TrimSpace(*upd.Command)
		if command == "" {
			t.mu.Unlock()
			return types.Alias{}, types.ErrEmptyCommand
		}
		a.Command = command
	}
	if upd.Type != nil {
		a.Type = *upd.Type
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	t.byName[name] = a
	t.sorted = nil
	t.mu.Unlock()

	if err := t.store.UpdateAlias(ctx, &a); err != nil {
		t.log.Warn("failed to persist alias update", zap.String("name", name), zap.Error(err))
	}
	return a, nil
}

// Get returns the alias for name, if present.
func (t *Table) Get(name string) (types.Alias, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.byName[name]
	return a, ok
}

// Has reports whether name is a registered alias.
func (t *Table) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// All returns the aliases ordered by use count desc, then creation time desc.
// The returned slice is the caller's to keep.
func (t *Table) All() []types.Alias {
	t.mu.RLock()
	if t.sorted != nil {
		out := make([]types.Alias, len(t.sorted))
		copy(out, t.sorted)
		t.mu.RUnlock()
		return out
	}
	t.mu.RUnlock()

	t.mu.Lock()
	if t.sorted == nil {
		sorted := make([]types.Alias, 0, len(t.byName))
		for _, a := range t.byName {
			sorted = append(sorted, a)
		}
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].UseCount != sorted[j].UseCount {
				return sorted[i].UseCount > sorted[j].UseCount
			}
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
		t.sorted = sorted
	}
	out := make([]types.Alias, len(t.sorted))
	copy(out, t.sorted)
	t.mu.Unlock()
	return out
}

// Resolve matches the first whitespace-delimited token of input against the
// table. On a hit the command is expanded: app aliases ignore trailing
// arguments, every other type chains them onto the command with a single
// space. A hit bumps the in-memory use count and queues the new value on the
// debounced writer.
func (t *Table) Resolve(input string) (*types.Resolution, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, false
	}
	name := trimmed
	remainder := ""
	if idx := strings.IndexFunc(trimmed, isSpace); idx >= 0 {
		name = trimmed[:idx]
		remainder = strings.TrimLeftFunc(trimmed[idx:], isSpace)
	}
	name = strings.ToLower(name)

	t.mu.Lock()
	a, ok := t.byName[name]
	if !ok {
		t.mu.Unlock()
		return nil, false
	}
	a.UseCount++
	t.byName[name] = a
	t.sorted = nil
	t.mu.Unlock()

	t.writer.Put(name, a.UseCount)

	res := &types.Resolution{Resolved: a.Command, Alias: a}
	if remainder != "" && a.Type != types.AliasApp {
		res.Resolved = a.Command + " " + remainder
		res.HasArgs = true
	}
	return res, true
}

// Flush forces any queued use-count updates to disk now.
func (t *Table) Flush() {
	t.writer.Flush()
}

// Close drains the writer. The table remains readable afterwards.
func (t *Table) Close() {
	t.writer.Close()
}

func (t *Table) flushUseCounts(batch map[string]int64) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := t.store.UpdateAliasUseCounts(ctx, batch); err != nil {
		t.log.Warn("failed to flush alias use counts", zap.Int("batch", len(batch)), zap.Error(err))
		return
	}
	t.log.Debug("alias use counts flushed", zap.Int("batch", len(batch)))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// newAliasID builds a sortable unique id: millisecond timestamp plus a short
// random suffix.
func newAliasID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
