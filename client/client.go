// Package client talks to a madlib storage daemon over REST. It is the
// Persister the CLI plugs into the pipeline.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

// ErrOffline is returned by all methods when the client is in no-op mode
// because no daemon URL was configured.
var ErrOffline = errors.New("madlib client offline (no URL configured)")

// Config holds configuration for the client. Unset fields fall back to the
// MADLIB_URL and MADLIB_API_KEY environment variables.
type Config struct {
	URL    string
	APIKey string
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the per-request timeout for REST calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client submits completed madlibs to the daemon.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	timeout time.Duration
	offline bool
}

// New creates a client. When no URL is configured it succeeds and returns a
// no-op client whose methods return ErrOffline; check Available() first.
func New(cfg Config, opts ...Option) *Client {
	if cfg.URL == "" {
		cfg.URL = strings.TrimSpace(os.Getenv("MADLIB_URL"))
	}
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv("MADLIB_API_KEY"))
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{},
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.offline = true
	}
	return c
}

// Available reports whether a daemon URL is configured.
func (c *Client) Available() bool { return !c.offline }

type envelope struct {
	OK   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
	Err  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Save persists a completed madlib via POST /v1/madlibs. The madlib's ID is
// client-assigned, so a retried Save is idempotent on the server side.
func (c *Client) Save(ctx context.Context, m madlib.Completed) error {
	var out struct {
		ID string `json:"id"`
	}
	return c.do(ctx, http.MethodPost, "/v1/madlibs", m, &out)
}

// Get fetches a stored madlib by id.
func (c *Client) Get(ctx context.Context, id string) (madlib.Completed, error) {
	var out madlib.Completed
	err := c.do(ctx, http.MethodGet, "/v1/madlibs/"+id, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.offline {
		return ErrOffline
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.OK {
		if env.Err != nil {
			return fmt.Errorf("%s %s: %s: %s", method, path, env.Err.Code, env.Err.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}
