// Package sdk is the HTTP client for the admin data plane: generic list
// fetching against the page/limit/sortBy/sortOrder/search contract, and the
// create/update/delete/bulk mutations the dispatcher submits. Every call
// takes a context and errors are decoded from the standard
// {message, statusCode} envelope.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/parlaygames/pitboss/pkg/grid/mutate"
	"github.com/parlaygames/pitboss/pkg/grid/query"
	"github.com/parlaygames/pitboss/pkg/listcache"
)

// Config defines client options.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to one admin backend. Safe for concurrent use; the token
// may be swapped while requests are in flight.
type Client struct {
	base *url.URL
	http *http.Client

	mu    sync.RWMutex
	token string
}

// New builds a client. The transport is otel-instrumented so dashboard
// fetches show up in traces alongside the server spans.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("sdk: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("sdk: base url needs scheme and host: %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:  base,
		token: strings.TrimSpace(cfg.Token),
		http:  &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

// SetToken swaps the bearer token, e.g. after a login refresh.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(tok)
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// APIError is the backend's error envelope.
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Page is the list response shape shared by every list endpoint.
type Page struct {
	Items      []json.RawMessage `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

func (c *Client) endpoint(parts ...string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api/" + strings.Join(parts, "/")
	return u.String()
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sdk: encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(b))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
	}
	if apiErr.StatusCode == 0 {
		apiErr.StatusCode = resp.StatusCode
	}
	return apiErr
}

// List fetches one page of a resource using translated query parameters.
func (c *Client) List(ctx context.Context, resource string, st query.State) (*Page, error) {
	u := c.endpoint(resource) + "?" + query.Translate(st).Encode()
	var page Page
	if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []json.RawMessage{}
	}
	return &page, nil
}

// ListCached consults the shared cache before fetching; on a miss the fetch
// result is stored under the deterministic view+query key. The cache is
// only ever written here and in mutation invalidation.
func (c *Client) ListCached(ctx context.Context, resource string, st query.State, cache listcache.Store, ttl time.Duration) (*Page, error) {
	if cache == nil {
		return c.List(ctx, resource, st)
	}
	key := st.Key(resource)
	if b, ok, err := cache.Get(ctx, key); err == nil && ok {
		var page Page
		if err := json.Unmarshal(b, &page); err == nil {
			return &page, nil
		}
	}
	page, err := c.List(ctx, resource, st)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(page); err == nil {
		_ = cache.Set(ctx, key, b, ttl)
	}
	return page, nil
}

// Create posts a new resource; the decoded result lands in out when non-nil.
func (c *Client) Create(ctx context.Context, resource string, body, out any) error {
	return c.do(ctx, http.MethodPost, c.endpoint(resource), body, out)
}

// Update replaces one resource by id.
func (c *Client) Update(ctx context.Context, resource, id string, body, out any) error {
	return c.do(ctx, http.MethodPut, c.endpoint(resource, id), body, out)
}

// Patch partially updates one resource by id.
func (c *Client) Patch(ctx context.Context, resource, id string, body, out any) error {
	return c.do(ctx, http.MethodPatch, c.endpoint(resource, id), body, out)
}

// Delete removes one resource by id.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(resource, id), nil, nil)
}

// BulkUpdate applies one operation to a set of ids as a single request.
func (c *Client) BulkUpdate(ctx context.Context, resource string, ids []string, op mutate.BulkOp) error {
	body := map[string]any{"ids": ids, "op": op}
	return c.do(ctx, http.MethodPost, c.endpoint(resource, "bulk"), body, nil)
}

// MutationDoer adapts the client to the dispatcher's Doer contract.
func (c *Client) MutationDoer() mutate.Doer {
	return mutate.DoerFunc(func(ctx context.Context, req mutate.Request) error {
		switch req.Kind {
		case mutate.Create:
			return c.Create(ctx, req.Resource, req.Payload, nil)
		case mutate.Update:
			if len(req.IDs) != 1 {
				return fmt.Errorf("sdk: update wants exactly one id, got %d", len(req.IDs))
			}
			return c.Update(ctx, req.Resource, req.IDs[0], req.Payload, nil)
		case mutate.Delete:
			if len(req.IDs) != 1 {
				return fmt.Errorf("sdk: delete wants exactly one id, got %d", len(req.IDs))
			}
			return c.Delete(ctx, req.Resource, req.IDs[0])
		case mutate.BulkUpdate:
			op, ok := req.Payload.(mutate.BulkOp)
			if !ok {
				return fmt.Errorf("sdk: bulk update wants a BulkOp payload, got %T", req.Payload)
			}
			return c.BulkUpdate(ctx, req.Resource, req.IDs, op)
		}
		return fmt.Errorf("sdk: unknown mutation kind %q", req.Kind)
	})
}
