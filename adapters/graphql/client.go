// Package graphql talks to the dashboard's GraphQL API over HTTP.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/layer-3/walletauth/core"
)

const ethLoginMutation = `mutation ethLogin($signature: String!, $address: String!, $messageHash: String!) {
  ethLogin(signature: $signature, address: $address, messageHash: $messageHash) {
    token
    user {
      id
      email
      username
      ethAccounts {
        address
        sanBalance
      }
    }
  }
}`

const projectQuery = `query project($id: ID!) {
  project(id: $id) {
    id
    name
    ticker
    marketCapUsd
    websiteLink
    facebookLink
    githubLink
    redditLink
    twitterLink
    whitepaperLink
    slackLink
  }
}`

const topicSearchQuery = `query topicSearch($searchText: String!, $from: DateTime!, $to: DateTime!, $interval: String) {
  topicSearch(source: ALL, searchText: $searchText, from: $from, to: $to, interval: $interval) {
    chartsData {
      telegram { datetime mentionsCount }
      reddit { datetime mentionsCount }
      professionalTradersChat { datetime mentionsCount }
    }
  }
}`

// Request is a GraphQL request body
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Error is a single entry of a GraphQL errors array
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Response is a GraphQL response body
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []Error         `json:"errors,omitempty"`
}

// ResponseErrors is returned when the server answered with a non-empty errors array
type ResponseErrors []Error

func (e ResponseErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

// StatusError is returned for non-2xx HTTP responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client is a minimal GraphQL client for the auth and project endpoints
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New creates a new GraphQL client for endpoint
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and decodes the data member of the response into out.
// token, when set, is sent as a bearer token.
func (c *Client) Do(ctx context.Context, token string, req Request, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var gqlResp Response
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return ResponseErrors(gqlResp.Errors)
	}
	if out == nil {
		return nil
	}
	if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
		return errors.New("response carries no data")
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// EthLogin runs the ethLogin mutation and classifies failures as *core.AuthError
func (c *Client) EthLogin(ctx context.Context, req core.LoginRequest) (*core.LoginPayload, error) {
	var data struct {
		EthLogin *core.LoginPayload `json:"ethLogin"`
	}
	err := c.Do(ctx, "", Request{
		Query:         ethLoginMutation,
		OperationName: "ethLogin",
		Variables: map[string]any{
			"signature":   req.Signature,
			"address":     req.Address,
			"messageHash": req.MessageHash,
		},
	}, &data)
	if err != nil {
		return nil, classifyLoginError(err)
	}
	if data.EthLogin == nil || data.EthLogin.Token == "" {
		return nil, core.NewAuthError(core.NetworkError, "ethLogin returned no token", nil)
	}
	return data.EthLogin, nil
}

// Project runs the project query
func (c *Client) Project(ctx context.Context, token, id string) (*core.Project, error) {
	var data struct {
		Project *core.Project `json:"project"`
	}
	err := c.Do(ctx, token, Request{
		Query:         projectQuery,
		OperationName: "project",
		Variables:     map[string]any{"id": id},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Project == nil {
		return nil, core.ErrProjectNotFound
	}
	return data.Project, nil
}

// TopicSearch runs the topicSearch query
func (c *Client) TopicSearch(ctx context.Context, token string, q core.TopicQuery) (*core.TopicSearch, error) {
	var data struct {
		TopicSearch *core.TopicSearch `json:"topicSearch"`
	}
	err := c.Do(ctx, token, Request{
		Query:         topicSearchQuery,
		OperationName: "topicSearch",
		Variables: map[string]any{
			"searchText": q.SearchText,
			"from":       q.From.UTC().Format(time.RFC3339),
			"to":         q.To.UTC().Format(time.RFC3339),
			"interval":   q.Interval,
		},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.TopicSearch == nil {
		return &core.TopicSearch{}, nil
	}
	return data.TopicSearch, nil
}

func classifyLoginError(err error) error {
	var gqlErrs ResponseErrors
	if errors.As(err, &gqlErrs) {
		return core.NewAuthError(core.InvalidSignature, "login rejected", err)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) &&
		(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
		return core.NewAuthError(core.InvalidSignature, "login rejected", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewAuthError(core.NetworkError, "login request timed out", err)
	}
	return core.NewAuthError(core.NetworkError, "login request failed", err)
}
