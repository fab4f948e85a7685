// Package api is the HTTP client for the console backend's JSON endpoints.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Backend endpoint paths.
const (
	PathState = "/api/state"
	PathMode  = "/api/cmd_mode"
	PathEStop = "/api/estop"
	PathOffer = "/api/webrtc/offer"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// maxResponseBytes bounds how much of a reply is read.
const maxResponseBytes = 1 << 20

// Client talks to one backend.
type Client struct {
	base *url.URL
	http *http.Client
}

// StatusError is returned for a non-2xx reply.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, body)
}

// New creates a client for the backend at server. timeout bounds each
// request; zero means no client-side limit beyond the caller's context.
func New(server string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(server))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid server URL %q", server),
			"Use a full URL like http://vehicle-console:8080")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Server URL %q must use http or https", server),
			"Use a full URL like http://vehicle-console:8080")
	}
	if u.Host == "" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Server URL %q has no host", server),
			"Use a full URL like http://vehicle-console:8080")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Endpoint joins path onto the base URL.
func (c *Client) Endpoint(path string) string {
	u := *c.base
	u.Path = u.Path + path
	return u.String()
}

// PostJSON sends in as a JSON body and decodes the reply into out. Non-2xx
// replies return a *StatusError.
func (c *Client) PostJSON(ctx context.Context, path, requestID string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}
	return c.do(req, out)
}

// GetJSON fetches path and decodes the reply into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s reply: %w", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s reply: %w", req.URL.Path, err)
	}
	return nil
}

// State fetches the current snapshot over plain HTTP.
func (c *Client) State(ctx context.Context) (*snapshot.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(PathState), nil)
	if err != nil {
		return nil, err
	}
	var raw jsoniter.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Couldn't fetch state from "+c.BaseURL(),
			"Check that the console backend is running and reachable")
	}
	return snapshot.Parse(raw)
}
