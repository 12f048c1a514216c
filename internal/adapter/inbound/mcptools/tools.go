package mcptools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"slacklists-mcp/internal/domain"
	"slacklists-mcp/internal/usecase"
)

// defaultDocsURL is the method reference offered when the caller does not
// name a page.
const defaultDocsURL = "https://docs.slack.dev/reference/methods/slackLists.items.create"

// ListsService is the operation surface the tools dispatch to.
type ListsService interface {
	AddItem(ctx context.Context, listID string, initialFields []map[string]any) (map[string]any, error)
	UpdateItem(ctx context.Context, listID string, cells []map[string]any) (map[string]any, error)
	DeleteItem(ctx context.Context, listID, itemID string) (map[string]any, error)
	GetItem(ctx context.Context, listID, itemID string, includeIsSubscribed bool) (map[string]any, error)
	ListItems(ctx context.Context, listID string, p usecase.ListItemsParams) (map[string]any, error)
	GetList(ctx context.Context, listID string) (map[string]any, error)
	GetListStructure(ctx context.Context, listID string) (map[string]any, error)
}

// DocsFetcher retrieves reference documentation pages.
type DocsFetcher interface {
	Fetch(ctx context.Context, url string) (map[string]any, error)
}

// Register adds every Slack Lists tool and the operations-guide prompt to the
// MCP server.
func Register(s *server.MCPServer, lists ListsService, docs DocsFetcher, logger *slog.Logger) {
	log := logger.With("component", "mcp_tools")

	s.AddTool(AddListItem(lists))
	s.AddTool(UpdateListItem(lists))
	s.AddTool(DeleteListItem(lists))
	s.AddTool(GetListItem(lists))
	s.AddTool(ListItems(lists))
	s.AddTool(GetListInfo(lists))
	s.AddTool(GetListStructure(lists))
	s.AddTool(GetSchemaDocumentation(docs))
	s.AddPrompt(OperationsGuidePrompt())

	log.Info("Registered Slack Lists tools", slog.Int("tool_count", 8))
}

// AddListItem creates a new item with typed initial fields.
func AddListItem(lists ListsService) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("add_list_item",
			mcp.WithDescription("Add a new item to a Slack list. Each initial field must carry a 'column_id' and one typed value (text, select, user, date, checkbox, number, email, phone). Plain text values are converted to the rich text structure the API requires; scalar select/user/date values are wrapped into arrays. Call get_list_structure first to learn the column ids and types."),
			mcp.WithString("list_id",
				mcp.Required(),
				mcp.Description("The ID of the list (e.g. F1234567890)."),
			),
			mcp.WithArray("initial_fields",
				mcp.Required(),
				mcp.Description("Array of field objects, each with 'column_id' plus one value key, e.g. {\"column_id\": \"Col123\", \"text\": \"My task\"} or {\"column_id\": \"Col456\", \"select\": \"option_id\"}."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listID, err := requiredString(req, "list_id")
			if err != nil {
				return errorResult(err)
			}
			fields, err := requiredObjectSlice(req, "initial_fields")
			if err != nil {
				return errorResult(err)
			}

			item, err := lists.AddItem(ctx, listID, fields)
			if err != nil {
				return errorResult(err)
			}
			return successResult(map[string]any{"item": item})
		}
}

// UpdateListItem applies partial cell updates to an existing item.
func UpdateListItem(lists ListsService) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("update_list_item",
			mcp.WithDescription("Update cells of an existing list item. Each cell targets one row and column: {\"row_id\": ..., \"column_id\": ..., <value key>: ...}. Values are normalized the same way as add_list_item."),
			mcp.WithString("list_id",
				mcp.Required(),
				mcp.Description("The ID of the list."),
			),
			mcp.WithArray("cells",
				mcp.Required(),
				mcp.Description("Array of cell objects, each with 'row_id', 'column_id' and one value key."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listID, err := requiredString(req, "list_id")
			if err != nil {
				return errorResult(err)
			}
			cells, err := requiredObjectSlice(req, "cells")
			if err != nil {
				return errorResult(err)
			}

			result, err := lists.UpdateItem(ctx, listID, cells)
			if err != nil {
				return errorResult(err)
			}
			return successResult(result)
		}
}

// DeleteListItem removes an item permanently.
func DeleteListItem(lists ListsService) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("delete_list_item",
			mcp.WithDescription("Delete an item from a list. Deletion is permanent; the item id becomes invalid for further reads or updates."),
			mcp.WithString("list_id",
				mcp.Required(),
				mcp.Description("The ID of the list."),
			),
			mcp.WithString("item_id",
				mcp.Required(),
				mcp.Description("The ID of the item to delete (e.g. Rec1234567890)."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listID, err := requiredString(req, "list_id")
			if err != nil {
				return errorResult(err)
			}
			itemID, err := requiredString(req, "item_id")
			if err != nil {
				return errorResult(err)
			}

			result, err := lists.DeleteItem(ctx, listID, itemID)
			if err != nil {
				return errorResult(err)
			}
			return successResult(result)
		}
}

// GetListItem fetches one item with its list metadata and subtasks.
func GetListItem(lists ListsService) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_list_item",
			mcp.WithDescription("Get a specific item from a list, together with the owning list's metadata and any subtasks."),
			mcp.WithString("list_id",
				mcp.Required(),
				mcp.Description("The ID of the list."),
			),
			mcp.WithString("item_id",
				mcp.Required(),
				mcp.Description("The ID of the item."),
			),
			mcp.WithBoolean("include_is_subscribed",
				mcp.Description("Set true to also report whether the calling user is subscribed to the item. Omitted from the API request unless true."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listID, err := requiredString(req, "list_id")
			if err != nil {
				return errorResult(err)
			}
			itemID, err := requiredString(req, "item_id")
			if err != nil {
				return errorResult(err)
			}
			includeIsSubscribed, err := optionalBool(req, "include_is_subscribed")
			if err != nil {
				return errorResult(err)
			}

			result, err := lists.GetItem(ctx, listID, itemID, includeIsSubscribed)
			if err != nil {
				return errorResult(err)
			}
			return successResult(result)
		}
}

// ListItems pages through a list's items with optional client-side filters.
func ListItems(lists ListsService) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("list_items",
			mcp.WithDescription("List items in a Slack list with pagination and optional filters. Filters are evaluated client-side (the API cannot filter server-side): each key maps a field key to one operator of equals, not_equals, contains, not_contains, in, not_in, e.g. {\"status\": {\"equals\": \"active\"}}. A filtered page may contain fewer than 'limit' matches even when more matches exist past the fetched page; has_more and next_cursor describe the unfiltered fetch."),
			mcp.WithString("list_id",
				mcp.Required(),
				mcp.Description("The ID of the list."),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of items to return (default 100, max 1000)."),
			),
			mcp.WithString("cursor",
				mcp.Description("Pagination cursor from a previous response's next_cursor."),
			),
			mcp.WithBoolean("archived",
				mcp.Description("Set true to list archived items instead of active ones."),
			),
			mcp.WithObject("filters",
				mcp.Description("Field-key keyed filter clauses, combined with AND. Example: {\"name\": {\"contains\": \"report\"}, \"status\": {\"in\": [\"active\", \"pending\"]}}."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listID, err := requiredString(req, "list_id")
			if err != nil {
				return errorResult(err)
			}
			limit, err := optionalInt(req, "limit", usecase.DefaultListLimit)
			if err != nil {
				return errorResult(err)
			}
			cursor, err := optionalString(req, "cursor")
			if err != nil {
				return errorResult(err)
			}
			archived, err := optionalBoolPtr(req, "archived")
			if err != nil {
				return errorResult(err)
			}
			rawFilters, err := optionalObject(req, "filters")
			if err != nil {
				return errorResult(err)
			}
			filters, err := domain.ParseFilterSet(rawFilters)
			if err != nil {
				return errorResult(err)
			}

			result, err := lists.ListItems(ctx, listID, usecase.ListItemsParams{
				Limit:    limit,
				Cursor:   cursor,
				Archived: archived,
				Filters:  filters,
			})
			if err != nil {
				return errorResult(err)
			}
			return successResult(result)
		}
}

// GetListInfo returns list metadata.
func GetListInfo(lists ListsService) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_list_info",
			mcp.WithDescription("Get metadata about a list: name, title and list_metadata including the column schema and views."),
			mcp.WithString("list_id",
				mcp.Required(),
				mcp.Description("The ID of the list."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listID, err := requiredString(req, "list_id")
			if err != nil {
				return errorResult(err)
			}

			list, err := lists.GetList(ctx, listID)
			if err != nil {
				return errorResult(err)
			}
			return successResult(map[string]any{"list": list})
		}
}

// GetListStructure returns the column schema keyed by column id.
func GetListStructure(lists ListsService) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_list_structure",
			mcp.WithDescription("Get the structure of a list: its columns keyed by column id, each with name, key, semantic type, primary flag and options (such as select choices). Use this before add_list_item or update_list_item to learn valid column ids and value shapes."),
			mcp.WithString("list_id",
				mcp.Required(),
				mcp.Description("The ID of the list."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			listID, err := requiredString(req, "list_id")
			if err != nil {
				return errorResult(err)
			}

			structure, err := lists.GetListStructure(ctx, listID)
			if err != nil {
				return errorResult(err)
			}
			return successResult(map[string]any{"structure": structure})
		}
}

// GetSchemaDocumentation checks a Slack reference documentation URL.
func GetSchemaDocumentation(docs DocsFetcher) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_schema_documentation",
			mcp.WithDescription("Resolve a Slack API reference documentation URL and report where it lands. Defaults to the slackLists.items.create method reference."),
			mcp.WithString("url",
				mcp.Description("Documentation URL under docs.slack.dev or api.slack.com."),
			),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			docURL, err := optionalString(req, "url")
			if err != nil {
				return errorResult(err)
			}
			if docURL == "" {
				docURL = defaultDocsURL
			}

			result, err := docs.Fetch(ctx, docURL)
			if err != nil {
				return errorResult(err)
			}
			return successResult(result)
		}
}
