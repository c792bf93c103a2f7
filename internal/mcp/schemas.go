package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// queryTool returns the tool definition for query
func queryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query",
		Description: "Resolve a launcher query: alias expansion first, then ranked catalog matches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "User input to resolve (alias name with optional arguments, or search text)",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Optional item type filter (e.g. app, file, command)",
				},
			},
			Required: []string{"query"},
		},
	}
}

// recordLaunchTool returns the tool definition for record_launch
func recordLaunchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "record_launch",
		Description: "Record that the user launched a catalog item, feeding usage back into ranking",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Catalog item id",
				},
			},
			Required: []string{"id"},
		},
	}
}

// indexItemsTool returns the tool definition for index_items
func indexItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_items",
		Description: "Upsert a batch of catalog items; existing items keep their usage counters",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"items": map[string]interface{}{
					"type":        "array",
					"description": "Items to upsert",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id":              map[string]interface{}{"type": "string"},
							"type":            map[string]interface{}{"type": "string"},
							"name":            map[string]interface{}{"type": "string"},
							"name_en":         map[string]interface{}{"type": "string"},
							"name_cn":         map[string]interface{}{"type": "string"},
							"path":            map[string]interface{}{"type": "string"},
							"icon":            map[string]interface{}{"type": "string"},
							"description":     map[string]interface{}{"type": "string"},
							"category":        map[string]interface{}{"type": "string"},
							"search_keywords": map[string]interface{}{"type": "string"},
						},
						"required": []string{"id", "type", "name"},
					},
				},
			},
			Required: []string{"items"},
		},
	}
}

// pruneItemsTool returns the tool definition for prune_items
func pruneItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "prune_items",
		Description: "Remove stale catalog items older than the retention window and absent from the current index snapshot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"current_ids": map[string]interface{}{
					"type":        "array",
					"description": "Ids present in the current index snapshot; stale items in this list are kept",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
		},
	}
}

// getStatsTool returns the tool definition for get_stats
func getStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_stats",
		Description: "Report catalog statistics, the item type enumeration and the alias count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// addAliasTool returns the tool definition for add_alias
func addAliasTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_alias",
		Description: "Register a user-defined alias mapping a short name to a command",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Alias name; stored lowercase, must be unique",
				},
				"command": map[string]interface{}{
					"type":        "string",
					"description": "Expansion target (command line, URL, or application path)",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Alias behavior for trailing arguments",
					"enum":        []string{"app", "web", "command", "search"},
					"default":     "command",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional human-readable note",
				},
			},
			Required: []string{"name", "command"},
		},
	}
}

// removeAliasTool returns the tool definition for remove_alias
func removeAliasTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_alias",
		Description: "Delete an alias by name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Alias name",
				},
			},
			Required: []string{"name"},
		},
	}
}

// updateAliasTool returns the tool definition for update_alias
func updateAliasTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_alias",
		Description: "Update an alias; omitted fields are left unchanged",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Alias name",
				},
				"command": map[string]interface{}{
					"type":        "string",
					"description": "New expansion target",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "New alias type",
					"enum":        []string{"app", "web", "command", "search"},
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
			},
			Required: []string{"name"},
		},
	}
}

// listAliasesTool returns the tool definition for list_aliases
func listAliasesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_aliases",
		Description: "List all aliases ordered by use count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
