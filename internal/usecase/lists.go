package usecase

import (
	"context"
	"log/slog"

	"slacklists-mcp/internal/domain"
)

const (
	// DefaultListLimit is the page size used when the caller does not ask
	// for one.
	DefaultListLimit = 100

	// maxRemoteLimit is the hard cap slackLists.items.list places on a
	// single page.
	maxRemoteLimit = 1000

	// overFetchFactor compensates for client-side filtering: the remote API
	// cannot filter server-side, so a filtered listing requests this
	// multiple of the caller's limit before matching and truncating.
	overFetchFactor = 3
)

// Lists maps the high-level list operations onto Slack Web API calls. It
// normalizes outgoing field payloads, evaluates filters against fetched
// pages, and reshapes remote responses. It holds no state beyond the shared
// API handle, so concurrent calls are independent.
type Lists struct {
	api    APICaller
	logger *slog.Logger
}

// NewLists creates the Lists adapter.
func NewLists(api APICaller, logger *slog.Logger) *Lists {
	return &Lists{
		api:    api,
		logger: logger.With("usecase", "Lists"),
	}
}

// AddItem creates a new item. Every initial field must name a column and
// carry a value; payloads are normalized to the wire shapes items.create
// accepts before anything leaves the process.
func (l *Lists) AddItem(ctx context.Context, listID string, initialFields []map[string]any) (map[string]any, error) {
	log := l.logger.With(slog.String("list_id", listID))

	normalized := make([]any, 0, len(initialFields))
	for _, raw := range initialFields {
		field := domain.ParseField(raw)
		if err := field.ValidateForCreate(); err != nil {
			log.Warn("Rejecting invalid initial field", slog.Any("error", err))
			return nil, err
		}
		normalized = append(normalized, field.Normalize().Wire())
	}

	resp, err := l.api.Call(ctx, MethodItemsCreate, map[string]any{
		"list_id":        listID,
		"initial_fields": normalized,
	})
	if err != nil {
		return nil, err
	}

	item, _ := resp["item"].(map[string]any)
	fields, ok := item["fields"]
	if !ok {
		// The create response may omit the echo; fall back to what was sent.
		fields = normalized
	}
	log.Info("Item created", slog.Any("item_id", item["id"]))
	return map[string]any{
		"id":      item["id"],
		"list_id": listID,
		"fields":  fields,
	}, nil
}

// UpdateItem applies partial cell updates. Each cell addresses one row and
// column; cell payloads are normalized the same way as initial fields.
func (l *Lists) UpdateItem(ctx context.Context, listID string, cells []map[string]any) (map[string]any, error) {
	normalized := make([]any, 0, len(cells))
	for _, raw := range cells {
		normalized = append(normalized, domain.ParseField(raw).Normalize().Wire())
	}

	if _, err := l.api.Call(ctx, MethodItemsUpdate, map[string]any{
		"list_id": listID,
		"cells":   normalized,
	}); err != nil {
		return nil, err
	}

	l.logger.Info("Item cells updated", slog.String("list_id", listID), slog.Int("cell_count", len(cells)))
	return map[string]any{"success": true}, nil
}

// DeleteItem removes an item from the list. Deletion is terminal: the item
// identifier is no longer valid for reads or updates afterwards.
func (l *Lists) DeleteItem(ctx context.Context, listID, itemID string) (map[string]any, error) {
	if _, err := l.api.Call(ctx, MethodItemsDelete, map[string]any{
		"list_id": listID,
		"id":      itemID,
	}); err != nil {
		return nil, err
	}

	l.logger.Info("Item deleted", slog.String("list_id", listID), slog.String("item_id", itemID))
	return map[string]any{"deleted": true, "item_id": itemID}, nil
}

// GetItem fetches one item together with its list metadata and subtasks. The
// include_is_subscribed key is present in the request only when the caller
// asked for it; the API keys on presence, not value.
func (l *Lists) GetItem(ctx context.Context, listID, itemID string, includeIsSubscribed bool) (map[string]any, error) {
	body := map[string]any{
		"list_id": listID,
		"id":      itemID,
	}
	if includeIsSubscribed {
		body["include_is_subscribed"] = true
	}

	resp, err := l.api.Call(ctx, MethodItemsInfo, body)
	if err != nil {
		return nil, err
	}

	// The API names the row "record"; the tool surface speaks in "item".
	return map[string]any{
		"item":     resp["record"],
		"list":     resp["list"],
		"subtasks": resp["subtasks"],
	}, nil
}

// ListItemsParams are the optional knobs of ListItems.
type ListItemsParams struct {
	Limit    int
	Cursor   string
	Archived *bool
	Filters  domain.FilterSet
}

// ListItems fetches a page of items. When filters are present it over-fetches
// (three times the requested limit, capped at the remote maximum), matches
// client-side, and truncates to the caller's limit. has_more and next_cursor
// describe the unfiltered fetch: a filtered page may hold fewer than limit
// matches even though more exist beyond the fetched page.
func (l *Lists) ListItems(ctx context.Context, listID string, p ListItemsParams) (map[string]any, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	fetchLimit := limit
	if len(p.Filters) > 0 {
		fetchLimit = limit * overFetchFactor
		if fetchLimit > maxRemoteLimit {
			fetchLimit = maxRemoteLimit
		}
	}

	body := map[string]any{
		"list_id": listID,
		"limit":   fetchLimit,
	}
	if p.Cursor != "" {
		body["cursor"] = p.Cursor
	}
	if p.Archived != nil {
		body["archived"] = *p.Archived
	}

	resp, err := l.api.Call(ctx, MethodItemsList, body)
	if err != nil {
		return nil, err
	}

	items, _ := resp["items"].([]any)
	if len(p.Filters) > 0 {
		matched := make([]any, 0, len(items))
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if p.Filters.Matches(item) {
				matched = append(matched, raw)
			}
		}
		if len(matched) > limit {
			matched = matched[:limit]
		}
		items = matched
	}

	hasMore, _ := resp["has_more"].(bool)
	return map[string]any{
		"items":       items,
		"has_more":    hasMore,
		"next_cursor": nextCursor(resp),
		"total":       len(items),
	}, nil
}

// nextCursor reads the pagination cursor from either the top level or the
// response_metadata envelope, whichever the API used.
func nextCursor(resp map[string]any) any {
	if c, ok := resp["next_cursor"]; ok {
		return c
	}
	if md, ok := resp["response_metadata"].(map[string]any); ok {
		return md["next_cursor"]
	}
	return nil
}

// GetList returns list metadata. The lists API has no direct info method, so
// a one-item probe supplies an item to ask items.info for the list envelope;
// an empty list is answered from the probe alone, without a second call.
func (l *Lists) GetList(ctx context.Context, listID string) (map[string]any, error) {
	probe, err := l.api.Call(ctx, MethodItemsList, map[string]any{
		"list_id": listID,
		"limit":   1,
	})
	if err != nil {
		return nil, err
	}

	items, _ := probe["items"].([]any)
	if len(items) == 0 {
		return map[string]any{
			"id":      listID,
			"message": "List exists but is empty. Add an item to see full list metadata.",
		}, nil
	}

	first, _ := items[0].(map[string]any)
	itemID, _ := first["id"].(string)
	info, err := l.api.Call(ctx, MethodItemsInfo, map[string]any{
		"list_id": listID,
		"id":      itemID,
	})
	if err != nil {
		return nil, err
	}

	list, _ := info["list"].(map[string]any)
	if list == nil {
		list = map[string]any{"id": listID}
	}
	return list, nil
}

// GetListStructure returns the column schema in a shape an agent can use to
// build initial_fields: columns keyed by column id with name, key, semantic
// type, primary flag and options, plus the list's views.
func (l *Lists) GetListStructure(ctx context.Context, listID string) (map[string]any, error) {
	probe, err := l.api.Call(ctx, MethodItemsList, map[string]any{
		"list_id": listID,
		"limit":   1,
	})
	if err != nil {
		return nil, err
	}

	items, _ := probe["items"].([]any)
	if len(items) == 0 {
		return map[string]any{
			"list_id": listID,
			"columns": map[string]any{},
			"message": "List is empty; column metadata is unavailable until it has at least one item.",
		}, nil
	}

	first, _ := items[0].(map[string]any)
	itemID, _ := first["id"].(string)
	detail, err := l.GetItem(ctx, listID, itemID, false)
	if err != nil {
		return nil, err
	}

	list, _ := detail["list"].(map[string]any)
	metadata, _ := list["list_metadata"].(map[string]any)
	schema, _ := metadata["schema"].([]any)

	columns := make(map[string]any, len(schema))
	for _, rawCol := range schema {
		col, ok := rawCol.(map[string]any)
		if !ok {
			continue
		}
		id, _ := col["id"].(string)
		if id == "" {
			continue
		}
		entry := map[string]any{
			"name":              col["name"],
			"key":               col["key"],
			"type":              col["type"],
			"is_primary_column": col["is_primary_column"],
		}
		if options, ok := col["options"]; ok {
			entry["options"] = options
		}
		columns[id] = entry
	}

	return map[string]any{
		"list_id": listID,
		"columns": columns,
		"views":   metadata["views"],
	}, nil
}
