// Package mcp exposes the launcher query engine over the Model Context
// Protocol on stdio.
//
// The server registers nine tools. Every tool returns an indented JSON text
// result; failures are returned as MCP errors with a numeric code and, where
// useful, structured data describing the offending parameter.
//
// # query
//
// Resolves user input. The alias table is consulted first; on a hit the
// response carries the expanded command chain and no catalog results:
//
//	{"query": "g log --oneline"}
//	=>
//	{
//	  "cache_hit": false,
//	  "resolution": {
//	    "resolved": "git log --oneline",
//	    "alias": "g",
//	    "type": "command",
//	    "has_args": true
//	  },
//	  "results": []
//	}
//
// Otherwise the catalog is searched, candidates are re-scored with the full
// signal set (exact, prefix, subsequence, substring, transliteration,
// synonym, keyword, edit-distance similarity) and returned ranked:
//
//	{"query": "cal", "type": "app"}
//	=>
//	{
//	  "cache_hit": false,
//	  "results": [
//	    {"id": "app-calendar", "name": "Calendar", "rank": 1, "score": 500,
//	     "reasons": ["prefix", "substring"], "source": "catalog", ...},
//	    {"id": "app-calculator", "name": "Calculator", "rank": 2, "score": 500, ...}
//	  ]
//	}
//
// Identical (query, type) pairs are served from an LRU cache until a catalog
// mutation invalidates it; cached responses set "cache_hit": true.
//
// # record_launch
//
// Feeds one user launch back into ranking: increments the launch counter,
// stamps last_used and bumps the usage score, then invalidates cached
// rankings. Unknown ids fail with code -32001.
//
// # index_items
//
// Upserts a batch of catalog items in one transaction. Items are matched by
// id; re-indexed items keep their accumulated usage counters. Each item needs
// id, type and name; name_en, name_cn, path, icon, description, category and
// search_keywords are optional.
//
// # prune_items
//
// Removes items whose last index time predates the retention window and whose
// id is absent from the supplied current_ids snapshot. Returns the number of
// rows removed.
//
// # get_stats
//
// Reports the total item count, per-type counts, the item type enumeration
// and the number of registered aliases.
//
// # add_alias / remove_alias / update_alias / list_aliases
//
// Manage the alias table. Names are canonicalized to lowercase and must be
// unique; add_alias fails with code -32002 on a duplicate and update_alias
// with -32003 on a missing name. Alias types control argument handling during
// resolution: "app" aliases ignore trailing arguments, "web", "command" and
// "search" aliases append them to the expanded command.
//
// # Degraded mode
//
// The server starts serving even when the database cannot be opened. Reads
// (query, get_stats, list_aliases) return empty result sets, writes
// (record_launch, index_items, prune_items) are logged and dropped, and every
// request retries initialization, so the launcher UI stays responsive while
// the storage recovers.
package mcp
