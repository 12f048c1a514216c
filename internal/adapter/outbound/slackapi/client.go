package slackapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"slacklists-mcp/internal/usecase"
)

// DefaultBaseURL is the production Slack Web API endpoint.
const DefaultBaseURL = "https://slack.com/api"

// APIError is a non-ok envelope from the Slack Web API. Code carries the
// remote error identifier (e.g. "list_not_found"); Detail the human message
// when the API includes one. Both surface verbatim and are never retried.
type APIError struct {
	Method string
	Code   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s failed: %s (%s)", e.Method, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s failed: %s", e.Method, e.Code)
}

// Client issues Slack Web API method calls. It implements usecase.APICaller
// and is safe for concurrent use: every call is independent and stateless.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
	tracer     trace.Tracer
}

var _ usecase.APICaller = (*Client)(nil)

// New creates a Client. A nil httpClient falls back to http.DefaultClient; an
// empty baseURL falls back to the production endpoint.
func New(httpClient *http.Client, baseURL, token string, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		logger:     logger.With("component", "slack_api"),
		tracer:     otel.Tracer("slacklists-mcp/slackapi"),
	}
}

// Call POSTs the method's JSON body and decodes the response envelope.
func (c *Client) Call(ctx context.Context, method string, body map[string]any) (map[string]any, error) {
	log := c.logger.With(slog.String("api_method", method))

	ctx, span := c.tracer.Start(ctx, method,
		trace.WithAttributes(attribute.String("slack.api_method", method)))
	defer span.End()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s body: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	log.Debug("Executing Slack API call", slog.Int("body_size", len(payload)))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Slack API request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, fmt.Errorf("request execution failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log = log.With(slog.Int("status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Received non-success status code", slog.String("response_body", string(respBody)))
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope map[string]any
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		log.Warn("Failed to unmarshal Slack response", slog.Any("error", err))
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if ok, _ := envelope["ok"].(bool); !ok {
		apiErr := &APIError{Method: method}
		apiErr.Code, _ = envelope["error"].(string)
		apiErr.Detail, _ = envelope["error_message"].(string)
		if apiErr.Code == "" {
			apiErr.Code = "unknown_error"
		}
		log.Warn("Slack API returned an error", slog.String("error_code", apiErr.Code))
		span.SetStatus(codes.Error, apiErr.Code)
		return nil, apiErr
	}

	log.Debug("Slack API call succeeded")
	return envelope, nil
}
