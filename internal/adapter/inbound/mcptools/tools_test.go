package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slacklists-mcp/internal/usecase"
)

// fakeLists records the last dispatched operation and returns canned payloads.
type fakeLists struct {
	lastOp     string
	lastListID string
	lastItemID string
	lastFields []map[string]any
	lastParams usecase.ListItemsParams
	lastFlag   bool
	result     map[string]any
	err        error
}

func (f *fakeLists) AddItem(_ context.Context, listID string, fields []map[string]any) (map[string]any, error) {
	f.lastOp, f.lastListID, f.lastFields = "add", listID, fields
	return f.result, f.err
}

func (f *fakeLists) UpdateItem(_ context.Context, listID string, cells []map[string]any) (map[string]any, error) {
	f.lastOp, f.lastListID, f.lastFields = "update", listID, cells
	return f.result, f.err
}

func (f *fakeLists) DeleteItem(_ context.Context, listID, itemID string) (map[string]any, error) {
	f.lastOp, f.lastListID, f.lastItemID = "delete", listID, itemID
	return f.result, f.err
}

func (f *fakeLists) GetItem(_ context.Context, listID, itemID string, includeIsSubscribed bool) (map[string]any, error) {
	f.lastOp, f.lastListID, f.lastItemID, f.lastFlag = "get_item", listID, itemID, includeIsSubscribed
	return f.result, f.err
}

func (f *fakeLists) ListItems(_ context.Context, listID string, p usecase.ListItemsParams) (map[string]any, error) {
	f.lastOp, f.lastListID, f.lastParams = "list_items", listID, p
	return f.result, f.err
}

func (f *fakeLists) GetList(_ context.Context, listID string) (map[string]any, error) {
	f.lastOp, f.lastListID = "get_list", listID
	return f.result, f.err
}

func (f *fakeLists) GetListStructure(_ context.Context, listID string) (map[string]any, error) {
	f.lastOp, f.lastListID = "get_structure", listID
	return f.result, f.err
}

type fakeDocs struct {
	lastURL string
	result  map[string]any
	err     error
}

func (f *fakeDocs) Fetch(_ context.Context, url string) (map[string]any, error) {
	f.lastURL = url
	return f.result, f.err
}

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// decodeResult unwraps the JSON text payload of a tool result.
func decodeResult(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestAddListItem(t *testing.T) {
	t.Run("success envelope", func(t *testing.T) {
		lists := &fakeLists{result: map[string]any{"id": "Rec123", "list_id": "F123"}}
		_, handler := AddListItem(lists)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"list_id": "F123",
			"initial_fields": []any{
				map[string]any{"column_id": "Col123", "text": "Task"},
			},
		}))
		require.NoError(t, err)

		out := decodeResult(t, res)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, "Rec123", out["item"].(map[string]any)["id"])

		assert.Equal(t, "add", lists.lastOp)
		assert.Equal(t, "F123", lists.lastListID)
		require.Len(t, lists.lastFields, 1)
		assert.Equal(t, "Col123", lists.lastFields[0]["column_id"])
	})

	t.Run("missing list_id", func(t *testing.T) {
		lists := &fakeLists{}
		_, handler := AddListItem(lists)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"initial_fields": []any{},
		}))
		require.NoError(t, err)

		out := decodeResult(t, res)
		assert.Equal(t, false, out["success"])
		assert.Contains(t, out["error"], "list_id")
		assert.Empty(t, lists.lastOp, "service must not be called on bad input")
	})

	t.Run("service error becomes tool output", func(t *testing.T) {
		lists := &fakeLists{err: errors.New("slackLists.items.create failed: list_not_found")}
		_, handler := AddListItem(lists)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"list_id":        "F123",
			"initial_fields": []any{map[string]any{"column_id": "Col123", "text": "x"}},
		}))
		require.NoError(t, err, "remote failures are tool output, not protocol errors")

		out := decodeResult(t, res)
		assert.Equal(t, false, out["success"])
		assert.Contains(t, out["error"], "list_not_found")
	})
}

func TestUpdateListItem(t *testing.T) {
	lists := &fakeLists{result: map[string]any{"success": true}}
	_, handler := UpdateListItem(lists)

	res, err := handler(context.Background(), callToolRequest(map[string]any{
		"list_id": "F123",
		"cells": []any{
			map[string]any{"row_id": "Rec123", "column_id": "Col123", "text": "Updated"},
		},
	}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "update", lists.lastOp)
	assert.Equal(t, "Rec123", lists.lastFields[0]["row_id"])
}

func TestDeleteListItem(t *testing.T) {
	lists := &fakeLists{result: map[string]any{"deleted": true, "item_id": "Rec123"}}
	_, handler := DeleteListItem(lists)

	res, err := handler(context.Background(), callToolRequest(map[string]any{
		"list_id": "F123",
		"item_id": "Rec123",
	}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, true, out["deleted"])
	assert.Equal(t, "delete", lists.lastOp)
	assert.Equal(t, "Rec123", lists.lastItemID)
}

func TestGetListItem(t *testing.T) {
	t.Run("subscription flag defaults to false", func(t *testing.T) {
		lists := &fakeLists{result: map[string]any{"item": map[string]any{"id": "Rec123"}}}
		_, handler := GetListItem(lists)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"list_id": "F123",
			"item_id": "Rec123",
		}))
		require.NoError(t, err)

		out := decodeResult(t, res)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, "get_item", lists.lastOp)
		assert.False(t, lists.lastFlag)
	})

	t.Run("subscription flag passes through", func(t *testing.T) {
		lists := &fakeLists{result: map[string]any{}}
		_, handler := GetListItem(lists)

		_, err := handler(context.Background(), callToolRequest(map[string]any{
			"list_id":               "F123",
			"item_id":               "Rec123",
			"include_is_subscribed": true,
		}))
		require.NoError(t, err)
		assert.True(t, lists.lastFlag)
	})
}

func TestListItems(t *testing.T) {
	t.Run("parses all parameters", func(t *testing.T) {
		lists := &fakeLists{result: map[string]any{"items": []any{}, "total": 0}}
		_, handler := ListItems(lists)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"list_id":  "F123",
			"limit":    50.0,
			"cursor":   "page_token",
			"archived": true,
			"filters": map[string]any{
				"status": map[string]any{"equals": "active"},
			},
		}))
		require.NoError(t, err)

		out := decodeResult(t, res)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, "list_items", lists.lastOp)
		assert.Equal(t, 50, lists.lastParams.Limit)
		assert.Equal(t, "page_token", lists.lastParams.Cursor)
		require.NotNil(t, lists.lastParams.Archived)
		assert.True(t, *lists.lastParams.Archived)
		require.Len(t, lists.lastParams.Filters, 1)
	})

	t.Run("defaults without optional parameters", func(t *testing.T) {
		lists := &fakeLists{result: map[string]any{"items": []any{}}}
		_, handler := ListItems(lists)

		_, err := handler(context.Background(), callToolRequest(map[string]any{"list_id": "F123"}))
		require.NoError(t, err)

		assert.Equal(t, usecase.DefaultListLimit, lists.lastParams.Limit)
		assert.Empty(t, lists.lastParams.Cursor)
		assert.Nil(t, lists.lastParams.Archived)
		assert.Nil(t, lists.lastParams.Filters)
	})

	t.Run("invalid filter rejected before dispatch", func(t *testing.T) {
		lists := &fakeLists{}
		_, handler := ListItems(lists)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"list_id": "F123",
			"filters": map[string]any{
				"status": map[string]any{"matches": "active"},
			},
		}))
		require.NoError(t, err)

		out := decodeResult(t, res)
		assert.Equal(t, false, out["success"])
		assert.Contains(t, out["error"], "matches")
		assert.Empty(t, lists.lastOp)
	})
}

func TestGetListInfo(t *testing.T) {
	lists := &fakeLists{result: map[string]any{"id": "F123", "name": "Test List"}}
	_, handler := GetListInfo(lists)

	res, err := handler(context.Background(), callToolRequest(map[string]any{"list_id": "F123"}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Test List", out["list"].(map[string]any)["name"])
	assert.Equal(t, "get_list", lists.lastOp)
}

func TestGetListStructure(t *testing.T) {
	lists := &fakeLists{result: map[string]any{
		"list_id": "F123",
		"columns": map[string]any{"Col123": map[string]any{"name": "Title"}},
	}}
	_, handler := GetListStructure(lists)

	res, err := handler(context.Background(), callToolRequest(map[string]any{"list_id": "F123"}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, true, out["success"])
	structure := out["structure"].(map[string]any)
	assert.Contains(t, structure["columns"], "Col123")
	assert.Equal(t, "get_structure", lists.lastOp)
}

func TestGetSchemaDocumentation(t *testing.T) {
	t.Run("explicit url", func(t *testing.T) {
		docs := &fakeDocs{result: map[string]any{"status_code": 200.0}}
		_, handler := GetSchemaDocumentation(docs)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"url": "https://api.slack.com/methods/slackLists.items.list",
		}))
		require.NoError(t, err)

		out := decodeResult(t, res)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, "https://api.slack.com/methods/slackLists.items.list", docs.lastURL)
	})

	t.Run("defaults to the items.create reference", func(t *testing.T) {
		docs := &fakeDocs{result: map[string]any{}}
		_, handler := GetSchemaDocumentation(docs)

		_, err := handler(context.Background(), callToolRequest(map[string]any{}))
		require.NoError(t, err)
		assert.Equal(t, defaultDocsURL, docs.lastURL)
	})

	t.Run("fetch failure becomes tool output", func(t *testing.T) {
		docs := &fakeDocs{err: errors.New(`documentation host "evil.example" is not allowed`)}
		_, handler := GetSchemaDocumentation(docs)

		res, err := handler(context.Background(), callToolRequest(map[string]any{
			"url": "https://evil.example/docs",
		}))
		require.NoError(t, err)

		out := decodeResult(t, res)
		assert.Equal(t, false, out["success"])
		assert.Contains(t, out["error"], "not allowed")
	})
}

func TestOperationsGuidePrompt(t *testing.T) {
	prompt, handler := OperationsGuidePrompt()
	assert.Equal(t, "list-operations-guide", prompt.Name)

	result, err := handler(context.Background(), mcp.GetPromptRequest{})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)

	text, ok := result.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	for _, tool := range []string{"get_list_structure", "add_list_item", "update_list_item", "delete_list_item", "list_items", "filters"} {
		assert.Contains(t, text.Text, tool)
	}
}
