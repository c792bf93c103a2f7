package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lidayx/lumina-engine/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeItemNotFound  = -32001 // Catalog item does not exist
	ErrorCodeAliasExists   = -32002 // Alias name already registered
	ErrorCodeAliasNotFound = -32003 // Alias does not exist
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleQuery handles the query tool invocation
func (s *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	itemType := getStringDefault(args, "type", "")

	resp, err := s.engine.Query(ctx, query, itemType)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "query failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"cache_hit": resp.CacheHit,
	}
	if resp.Resolution != nil {
		response["resolution"] = map[string]interface{}{
			"resolved": resp.Resolution.Resolved,
			"alias":    resp.Resolution.Alias.Name,
			"type":     resp.Resolution.Alias.Type,
			"has_args": resp.Resolution.HasArgs,
		}
	}
	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]interface{}{
			"id":      r.Item.ID,
			"type":    r.Item.Type,
			"name":    r.Item.Name,
			"path":    r.Item.Path,
			"icon":    r.Item.Icon,
			"rank":    r.Rank,
			"score":   r.Score,
			"reasons": r.Reasons,
			"source":  string(r.Source),
		})
	}
	response["results"] = results

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRecordLaunch handles the record_launch tool invocation
func (s *Server) handleRecordLaunch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	if err := s.engine.RecordLaunch(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, newMCPError(ErrorCodeItemNotFound, "item not found", map[string]interface{}{
				"id": id,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to record launch", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"recorded": true,
		"id":       id,
	})), nil
}

// itemPayload mirrors the index_items wire shape.
type itemPayload struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Name           string `json:"name"`
	NameEn         string `json:"name_en"`
	NameCn         string `json:"name_cn"`
	Path           string `json:"path"`
	Icon           string `json:"icon"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	SearchKeywords string `json:"search_keywords"`
}

// handleIndexItems handles the index_items tool invocation
func (s *Server) handleIndexItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rawItems, ok := args["items"].([]interface{})
	if !ok || len(rawItems) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "items parameter is required", map[string]interface{}{
			"param":  "items",
			"reason": "missing or empty",
		})
	}

	// Round-trip through JSON rather than walking the maps field by field.
	encoded, err := json.Marshal(rawItems)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "items are not encodable", map[string]interface{}{
			"error": err.Error(),
		})
	}
	var payloads []itemPayload
	if err := json.Unmarshal(encoded, &payloads); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "items have an invalid shape", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]*types.CatalogItem, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, &types.CatalogItem{
			ID:             p.ID,
			Type:           p.Type,
			Name:           p.Name,
			NameEn:         p.NameEn,
			NameCn:         p.NameCn,
			Path:           p.Path,
			Icon:           p.Icon,
			Description:    p.Description,
			Category:       p.Category,
			SearchKeywords: p.SearchKeywords,
		})
	}

	if err := s.engine.IndexItems(ctx, items); err != nil {
		if errors.Is(err, types.ErrEmptyID) || errors.Is(err, types.ErrEmptyName) || errors.Is(err, types.ErrEmptyType) {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid item", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"indexed": true,
		"count":   len(items),
	})), nil
}

// handlePruneItems handles the prune_items tool invocation
func (s *Server) handlePruneItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	var currentIDs []string
	if raw, ok := args["current_ids"].([]interface{}); ok {
		for _, v := range raw {
			if id, ok := v.(string); ok && id != "" {
				currentIDs = append(currentIDs, id)
			}
		}
	}

	pruned, err := s.engine.PruneStale(ctx, currentIDs)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "prune failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"pruned": pruned,
	})), nil
}

// handleGetStats handles the get_stats tool invocation
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.engine.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read stats", map[string]interface{}{
			"error": err.Error(),
		})
	}
	itemTypes, err := s.engine.ListTypes(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read item types", map[string]interface{}{
			"error": err.Error(),
		})
	}

	typeStats := make([]map[string]interface{}, 0, len(stats.TypeStats))
	for _, tc := range stats.TypeStats {
		typeStats = append(typeStats, map[string]interface{}{
			"type":  tc.Type,
			"count": tc.Count,
		})
	}
	typeRows := make([]map[string]interface{}, 0, len(itemTypes))
	for _, it := range itemTypes {
		typeRows = append(typeRows, map[string]interface{}{
			"type":        it.Type,
			"label":       it.Label,
			"icon":        it.Icon,
			"description": it.Description,
		})
	}

	response := map[string]interface{}{
		"total_items": stats.TotalItems,
		"type_stats":  typeStats,
		"item_types":  typeRows,
		"alias_count": len(s.engine.ListAliases()),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAddAlias handles the add_alias tool invocation
func (s *Server) handleAddAlias(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, _ := args["name"].(string)
	command, _ := args["command"].(string)
	aliasType := getStringDefault(args, "type", "")
	description := getStringDefault(args, "description", "")

	a, err := s.engine.AddAlias(ctx, name, command, aliasType, description)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrAlreadyExists):
			return nil, newMCPError(ErrorCodeAliasExists, "alias already exists", map[string]interface{}{
				"name": name,
			})
		case errors.Is(err, types.ErrEmptyName), errors.Is(err, types.ErrEmptyCommand):
			return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
		default:
			return nil, newMCPError(ErrorCodeInternalError, "failed to add alias", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return mcp.NewToolResultText(formatJSON(aliasResponse(a))), nil
}

// handleRemoveAlias handles the remove_alias tool invocation
func (s *Server) handleRemoveAlias(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	removed := s.engine.RemoveAlias(ctx, name)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"removed": removed,
		"name":    name,
	})), nil
}

// handleUpdateAlias handles the update_alias tool invocation
func (s *Server) handleUpdateAlias(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	var upd types.AliasUpdate
	if v, ok := args["command"].(string); ok {
		upd.Command = &v
	}
	if v, ok := args["type"].(string); ok {
		upd.Type = &v
	}
	if v, ok := args["description"].(string); ok {
		upd.Description = &v
	}

	a, err := s.engine.UpdateAlias(ctx, name, upd)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			return nil, newMCPError(ErrorCodeAliasNotFound, "alias not found", map[string]interface{}{
				"name": name,
			})
		case errors.Is(err, types.ErrEmptyCommand):
			return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
		default:
			return nil, newMCPError(ErrorCodeInternalError, "failed to update alias", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return mcp.NewToolResultText(formatJSON(aliasResponse(a))), nil
}

// handleListAliases handles the list_aliases tool invocation
func (s *Server) handleListAliases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	aliases := s.engine.ListAliases()
	rows := make([]map[string]interface{}, 0, len(aliases))
	for _, a := range aliases {
		rows = append(rows, aliasResponse(a))
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"aliases": rows,
		"count":   len(rows),
	})), nil
}

// Helper functions

func aliasResponse(a types.Alias) map[string]interface{} {
	return map[string]interface{}{
		"id":          a.ID,
		"name":        a.Name,
		"command":     a.Command,
		"type":        a.Type,
		"description": a.Description,
		"use_count":   a.UseCount,
		"created_at":  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
