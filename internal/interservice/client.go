// Package interservice is the query/mutation transport shared by the auth,
// user and mail service clients.
package interservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client posts GraphQL queries to a sibling service. Every call is bounded by
// the client timeout; a timeout surfaces as an ordinary error for the caller
// to classify as upstream failure.
type Client struct {
	url    string
	key    string
	http   *http.Client
	logger *zap.Logger
}

// New creates a client for one sibling service. key is sent as the Auth
// header on every request.
func New(url, key string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:    url,
		key:    key,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Query executes one query or mutation and unmarshals the data field into out
// (out may be nil for fire-and-forget mutations).
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Auth", c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query status: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Errors) > 0 {
		c.logger.Debug("graphql error", zap.String("url", c.url), zap.String("message", env.Errors[0].Message))
		return fmt.Errorf("query failed: %s", env.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
