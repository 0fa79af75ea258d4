// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend is the HTTP client for the remote academic search
// service. It posts natural-language queries with filter settings to the
// search endpoint and decodes one page of articles per call, and also
// wraps the service's status and summarize endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/researchflow/internal/httputil"
	"github.com/pdiddy/researchflow/pkg/types"
)

// Endpoint paths relative to BackendConfig.BaseURL.
const (
	searchPath    = "/search/"
	statusPath    = "/status/"
	summarizePath = "/summarize/"
)

// maxErrorBody bounds how much of an error response is read for a message.
const maxErrorBody = 64 << 10

// Client talks to the search service.
type Client struct {
	HTTP   *http.Client
	Config types.BackendConfig
	Logger *zap.Logger
}

// NewClient returns a Client with an http.Client built from cfg.Timeout.
func NewClient(cfg types.BackendConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Logger: logger,
	}
}

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("search service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("search service returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Search posts req to the search endpoint and returns the decoded page.
func (c *Client) Search(ctx context.Context, req types.SearchRequest) (types.SearchResponse, error) {
	var out types.SearchResponse
	if err := c.do(ctx, http.MethodPost, searchPath, req, &out); err != nil {
		return types.SearchResponse{}, err
	}
	if out.Articles == nil {
		out.Articles = []types.Article{}
	}
	c.Logger.Debug("search page received",
		zap.String("query", req.Query),
		zap.Int("offset", req.Offset),
		zap.Int("articles", len(out.Articles)))
	return out, nil
}

// Status is the health report from the status endpoint.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Status queries the service health endpoint.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	if err := c.do(ctx, http.MethodGet, statusPath, nil, &out); err != nil {
		return Status{}, err
	}
	return out, nil
}

// SummarizeRequest asks the service to summarize an article. Exactly one of
// URL (a PDF or landing page) or Text should be set; Text wins when both are.
type SummarizeRequest struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// Summary is the structured summary returned by the service. Its fields
// are model-generated, so it is kept as a free-form object.
type Summary map[string]any

// Summarize posts req to the summarize endpoint.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (Summary, error) {
	if req.URL == "" && req.Text == "" {
		return nil, fmt.Errorf("summarize: provide a url or text")
	}
	var out Summary
	if err := c.do(ctx, http.MethodPost, summarizePath, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.Config.BaseURL, "/") + path
}

// do sends one JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}
	if c.Config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.APIToken)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Config.MaxRetries, c.Logger)
	if err != nil {
		c.Logger.Error("search service request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("search service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
		c.Logger.Warn("search service error", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing search service response: %w", err)
	}
	return nil
}

// errorMessage extracts the "message" or "error" field from an error body.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
