package docs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// DefaultAllowedHosts are the documentation hosts fetchable out of the box.
var DefaultAllowedHosts = []string{"docs.slack.dev", "api.slack.com"}

// maxBodyBytes bounds how much of a documentation page is drained. The body
// itself is not returned to callers, only fetched far enough to confirm the
// page resolves.
const maxBodyBytes = 1 << 20

// Fetcher retrieves Slack reference documentation pages so an agent can check
// that a method reference exists and where redirects lead.
type Fetcher struct {
	client       *http.Client
	allowedHosts map[string]struct{}
	logger       *slog.Logger
}

// NewFetcher creates a Fetcher restricted to the given hosts. An empty host
// list falls back to DefaultAllowedHosts; a nil client to http.DefaultClient.
func NewFetcher(client *http.Client, allowedHosts []string, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if len(allowedHosts) == 0 {
		allowedHosts = DefaultAllowedHosts
	}
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		hosts[h] = struct{}{}
	}
	return &Fetcher{
		client:       client,
		allowedHosts: hosts,
		logger:       logger.With("component", "docs_fetcher"),
	}
}

// Fetch GETs the documentation URL and reports where it landed: the final URL
// after redirects, the original URL, and the status code.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (map[string]any, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid documentation URL %q", rawURL)
	}
	if _, ok := f.allowedHosts[u.Host]; !ok {
		return nil, fmt.Errorf("documentation host %q is not allowed", u.Host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	f.logger.Debug("Fetching documentation", slog.String("url", rawURL))
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("Documentation fetch failed", slog.String("url", rawURL), slog.Any("error", err))
		return nil, fmt.Errorf("documentation fetch failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return map[string]any{
		"url":          resp.Request.URL.String(),
		"original_url": rawURL,
		"status_code":  resp.StatusCode,
		"message":      "Slack documentation resolved at this URL. Open it to read the full method reference.",
	}, nil
}
