package usecase

import "context"

// Method names of the Slack Lists Web API surface this adapter drives.
const (
	MethodItemsCreate = "slackLists.items.create"
	MethodItemsUpdate = "slackLists.items.update"
	MethodItemsDelete = "slackLists.items.delete"
	MethodItemsInfo   = "slackLists.items.info"
	MethodItemsList   = "slackLists.items.list"
)

// APICaller executes one Slack Web API method call. Implementations own
// transport, auth and the ok/error envelope: a non-ok response surfaces as an
// error carrying the remote error code and message, and transport failures
// propagate as-is. No retries happen at any layer above the transport.
type APICaller interface {
	Call(ctx context.Context, method string, body map[string]any) (map[string]any, error)
}
