package types

// MatchSource identifies which resolution path produced a result.
type MatchSource string

const (
	SourceAlias   MatchSource = "alias"
	SourceCatalog MatchSource = "catalog"
)

// SearchResult is one ranked candidate for a query.
type SearchResult struct {
	Item    CatalogItem
	Rank    int // Position in the result set (1-based)
	Score   int // Match score in [0, 1000]
	Reasons []string
	Source  MatchSource
}

// QueryResponse contains the ranked candidates for one query plus, when the
// leading token matched an alias, the resolved command chain.
type QueryResponse struct {
	Results    []SearchResult
	Resolution *Resolution // Non-nil only on an alias hit
	CacheHit   bool
}
