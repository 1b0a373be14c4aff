// Package api implements record.Service over the remote world API's
// HTTP JSON interface, with a per-client record cache and typed error
// mapping so callers branch on sentinels instead of status codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OnlyWorlds/worldtool/internal/wire"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// DefaultBaseURL is the public world API endpoint.
const DefaultBaseURL = "https://www.onlyworlds.com/api/worldapi"

// Config parameterizes a Client.
type Config struct {
	BaseURL string
	APIKey  string
	APIPin  string
	// WorldID scopes list calls and backs CurrentWorldID when the API
	// offers no better answer.
	WorldID string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the remote persistence service. All state (cache,
// credentials) lives on the client; two clients share nothing.
type Client struct {
	baseURL string
	apiKey  string
	apiPin  string
	worldID string
	httpc   *http.Client
	codec   *wire.Codec
	cache   *cache
	log     *slog.Logger
}

// NewClient builds a client. The codec normalizes every read through
// the session's schema engine so cached records are always in-memory
// shape, never wire shape.
func NewClient(cfg Config, codec *wire.Codec) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		apiPin:  cfg.APIPin,
		worldID: cfg.WorldID,
		httpc:   cfg.HTTPClient,
		codec:   codec,
		cache:   newCache(),
		log:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Evict drops one record from the cache. Existence probes call this
// first so a stale hit cannot mask a server-side deletion.
func (c *Client) Evict(recordType, id string) {
	c.cache.evict(recordType, id)
}

// CacheLen reports how many records the cache holds.
func (c *Client) CacheLen() int {
	return c.cache.len()
}

// List implements record.Service.
func (c *Client) List(ctx context.Context, recordType string, filters map[string]string) ([]record.Record, error) {
	if !record.IsValidType(recordType) {
		return nil, fmt.Errorf("list %q: %w", recordType, record.ErrInvalidType)
	}

	endpoint := c.typeURL(recordType)
	if len(filters) > 0 {
		q := url.Values{}
		for k, v := range filters {
			q.Set(k, v)
		}
		endpoint += "?" + q.Encode()
	}

	var body []map[string]any
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &body); err != nil {
		return nil, fmt.Errorf("listing %s: %w", recordType, err)
	}

	out := make([]record.Record, 0, len(body))
	for _, obj := range body {
		r := c.codec.FromWire(obj, c.worldID)
		c.cache.put(recordType, r)
		out = append(out, r)
	}
	return out, nil
}

// Get implements record.Service. A cache hit is returned without a
// network call.
func (c *Client) Get(ctx context.Context, recordType, id string) (record.Record, error) {
	if !record.IsValidType(recordType) {
		return nil, fmt.Errorf("get %q: %w", recordType, record.ErrInvalidType)
	}
	if id == "" {
		return nil, fmt.Errorf("get %s: %w", recordType, record.ErrInvalidID)
	}
	if r, ok := c.cache.get(recordType, id); ok {
		return r, nil
	}

	var body map[string]any
	if err := c.do(ctx, http.MethodGet, c.recordURL(recordType, id), nil, &body); err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", recordType, id, err)
	}

	r := c.codec.FromWire(body, c.worldID)
	c.cache.put(recordType, r)
	return r, nil
}

// Create implements record.Service.
func (c *Client) Create(ctx context.Context, recordType string, r record.Record) (record.Record, error) {
	if !record.IsValidType(recordType) {
		return nil, fmt.Errorf("create %q: %w", recordType, record.ErrInvalidType)
	}

	payload := c.codec.ToWire(r)
	payload[record.FieldID] = r.ID()

	var body map[string]any
	if err := c.do(ctx, http.MethodPost, c.typeURL(recordType), payload, &body); err != nil {
		return nil, fmt.Errorf("creating %s: %w", recordType, err)
	}

	created := c.codec.FromWire(body, c.worldID)
	c.cache.put(recordType, created)
	return created, nil
}

// Update implements record.Service. The patch is already wire-shaped;
// the server merges it and returns the full record, which replaces the
// cached copy. No retry here: resubmitting a possibly-malformed edit
// without the user noticing is worse than surfacing the failure once.
func (c *Client) Update(ctx context.Context, recordType, id string, patch map[string]any) (record.Record, error) {
	if !record.IsValidType(recordType) {
		return nil, fmt.Errorf("update %q: %w", recordType, record.ErrInvalidType)
	}

	var body map[string]any
	if err := c.do(ctx, http.MethodPatch, c.recordURL(recordType, id), patch, &body); err != nil {
		return nil, fmt.Errorf("updating %s/%s: %w", recordType, id, err)
	}

	updated := c.codec.FromWire(body, c.worldID)
	c.cache.put(recordType, updated)
	return updated, nil
}

// Delete implements record.Service.
func (c *Client) Delete(ctx context.Context, recordType, id string) error {
	if !record.IsValidType(recordType) {
		return fmt.Errorf("delete %q: %w", recordType, record.ErrInvalidType)
	}
	if err := c.do(ctx, http.MethodDelete, c.recordURL(recordType, id), nil, nil); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", recordType, id, err)
	}
	c.cache.evict(recordType, id)
	return nil
}

// CurrentWorldID implements record.Service: the configured world wins;
// otherwise the world collection is consulted and a sole world is taken
// as the current one. Returns "" with no error when there is no usable
// answer — absence of world context is a state, not a failure.
func (c *Client) CurrentWorldID(ctx context.Context) (string, error) {
	if c.worldID != "" {
		return c.worldID, nil
	}
	worlds, err := c.List(ctx, record.TypeWorld, nil)
	if err != nil {
		return "", fmt.Errorf("resolving current world: %w", err)
	}
	if len(worlds) == 1 {
		c.worldID = worlds[0].ID()
		return c.worldID, nil
	}
	return "", nil
}

func (c *Client) typeURL(recordType string) string {
	return fmt.Sprintf("%s/%s/", c.baseURL, recordType)
}

func (c *Client) recordURL(recordType, id string) string {
	return fmt.Sprintf("%s/%s/%s/", c.baseURL, recordType, id)
}

// do runs one HTTP exchange: marshal, authenticate, map the status to a
// sentinel, decode. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("API-Key", c.apiKey)
	}
	if c.apiPin != "" {
		req.Header.Set("API-Pin", c.apiPin)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", record.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	detail := strings.TrimSpace(string(snippet))

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		sentinel = record.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		sentinel = record.ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		sentinel = record.ErrValidation
	default:
		sentinel = record.ErrUnavailable
	}

	if detail == "" {
		return fmt.Errorf("%w (HTTP %d)", sentinel, resp.StatusCode)
	}
	return fmt.Errorf("%w (HTTP %d): %s", sentinel, resp.StatusCode, detail)
}
