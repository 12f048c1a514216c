package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const operationsGuide = `# Working with Slack Lists

## Recommended workflow

1. **get_list_structure** — always start here. It returns the list's columns
   keyed by column id, with each column's key, semantic type, primary flag and
   options (e.g. select choices). You need column ids to write values and
   column keys to filter.
2. **list_items** — browse existing items, optionally with filters.
3. **add_list_item** / **update_list_item** / **delete_list_item** — mutate.
4. **get_list_item** — read a single item with its metadata and subtasks.
5. **get_list_info** — list-level metadata (name, title, schema, views).

## Field values

Each field carries a 'column_id' plus exactly one value key matching the
column's type:

- text: a plain string. It is converted to the rich text structure the API
  requires automatically.
- select / user / date / email / phone: a single id or an array of ids. Scalars
  are wrapped into arrays automatically.
- number: a number or array of numbers.
- checkbox: true or false, passed through as-is.

Example initial_fields for add_list_item:

    [
      {"column_id": "Col123", "text": "Prepare quarterly report"},
      {"column_id": "Col456", "select": "opt_in_progress"},
      {"column_id": "Col789", "user": "U0123456"},
      {"column_id": "Col102", "checkbox": false}
    ]

For update_list_item use cells, which additionally carry the row:

    [{"row_id": "Rec123", "column_id": "Col456", "select": "opt_done"}]

## filters (list_items)

Filters map a field *key* (not column id) to one operator:

- equals / not_equals: exact match, case-sensitive.
- contains / not_contains: case-insensitive substring.
- in / not_in: membership in an array of values.

All clauses combine with AND. Filtering happens client-side: a filtered page
may contain fewer than 'limit' matches even when more exist beyond the fetched
page; use next_cursor to keep scanning.`

// OperationsGuidePrompt explains the tool workflow, field value shapes and
// filter semantics to the model.
func OperationsGuidePrompt() (mcp.Prompt, server.PromptHandlerFunc) {
	return mcp.NewPrompt("list-operations-guide",
			mcp.WithPromptDescription("Guide to working with Slack Lists through this server's tools: workflow, field value shapes, and filter semantics."),
		), func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return mcp.NewGetPromptResult(
				"Slack Lists operations guide",
				[]mcp.PromptMessage{
					mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(operationsGuide)),
				},
			), nil
		}
}
