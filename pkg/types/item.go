package types

import "time"

// Well-known item type keys. The set is extensible at runtime: types are rows
// in the item_types table, not code.
const (
	TypeApp          = "app"
	TypeFile         = "file"
	TypeCommand      = "command"
	TypeWeb          = "web"
	TypeBrowser      = "browser"
	TypeSearchEngine = "search-engine"
	TypeHistory      = "history"
	TypeCustom       = "custom"
)

// UsageScoreIncrement is added to an item's score accumulator on every launch.
const UsageScoreIncrement = 0.1

// CatalogItem is a launchable target in the catalog.
type CatalogItem struct {
	ID          string // Opaque stable identifier, unique across the catalog
	Type        string
	Name        string // Primary display name, required
	NameEn      string
	NameCn      string
	Path        string // Resolvable target: file path, URL, or command line
	Icon        string
	Description string
	Category    string

	// Usage feedback
	LaunchCount int64
	LastUsed    *time.Time // Nil until first launch
	Score       float64    // Accumulator; +UsageScoreIncrement per launch

	// Precomputed extra match surface (romanized forms, extra keywords),
	// whitespace separated.
	SearchKeywords string

	IndexedAt time.Time // Last (re)index time; drives retention pruning
}

// Validate checks required fields before an upsert.
func (it *CatalogItem) Validate() error {
	if it.ID == "" {
		return ErrEmptyID
	}
	if it.Name == "" {
		return ErrEmptyName
	}
	if it.Type == "" {
		return ErrEmptyType
	}
	return nil
}

// ItemType describes one entry of the type enumeration.
type ItemType struct {
	Type        string // Key
	Label       string
	Icon        string
	Description string
}

// TypeCount is one row of the per-type catalog statistics.
type TypeCount struct {
	Type  string
	Count int
}

// CatalogStats summarizes the catalog contents.
type CatalogStats struct {
	TotalItems int
	TypeStats  []TypeCount
}
