package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"review-proxy-api/internal/models"
)

const (
	userPath = "/auth/v1/user"
	restPath = "/rest/v1/"

	// maxResponseBytes caps how much of a reply is buffered
	maxResponseBytes = 4 << 20
)

// Endpoint labels passed to the observer
const (
	EndpointGetUser = "auth_get_user"
	EndpointInsert  = "rest_insert"
)

// ObserveFunc receives the outcome of every outbound call. Status is 0 when
// the request never got a reply.
type ObserveFunc func(endpoint string, status int, duration time.Duration)

// Client talks to the hosted auth and REST endpoints with one API key.
//
// A Client is immutable once built and safe for concurrent use. The
// privileged client is created once per process; user-scoped clients are
// created per request with WithBearer.
type Client struct {
	baseURL string
	apiKey  string
	bearer  string
	hc      *http.Client
	observe ObserveFunc
}

// Option configures a Client
type Option func(*Client)

// WithBearer authenticates REST calls as the given user token instead of
// the API key, so row-level-security policies see that user.
func WithBearer(token string) Option {
	return func(c *Client) {
		c.bearer = token
	}
}

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithObserver registers a callback for outbound call metrics
func WithObserver(fn ObserveFunc) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New creates a client for the backend at baseURL using apiKey
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("data store URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("data store URL %q is not an absolute URL", baseURL)
	}
	if apiKey == "" {
		return nil, errors.New("data store API key is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetUser exchanges a user access token for the identity it belongs to.
// The call is authorised by this client's API key; the token itself is sent
// as the bearer so the auth server validates it.
func (c *Client) GetUser(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	body, err := c.do(ctx, EndpointGetUser, http.MethodGet, userPath, nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if identity.ID == "" {
		return nil, ErrNoUser
	}
	return &identity, nil
}

// Insert writes rows into table and returns the inserted representation
func (c *Client) Insert(ctx context.Context, table string, rows any) (json.RawMessage, error) {
	if table == "" {
		return nil, errors.New("table name is required")
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}

	body, err := c.do(ctx, EndpointInsert, http.MethodPost, restPath+url.PathEscape(table), payload, map[string]string{
		"Content-Type": "application/json",
		"Prefer":       "return=representation",
	})
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return json.RawMessage("[]"), nil
	}
	if !json.Valid(body) {
		return nil, ErrMalformedResponse
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.authToken())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-proxy-api/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.record(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.record(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) authToken() string {
	if c.bearer != "" {
		return c.bearer
	}
	return c.apiKey
}

func (c *Client) record(endpoint string, status int, d time.Duration) {
	if c.observe != nil {
		c.observe(endpoint, status, d)
	}
}
