// Package lookup talks to the item-lookup service that returns the configurable items
// for a machine keyword.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/machineconfig/internal/metrics"
	"github.com/jask/machineconfig/internal/session"
)

const (
	// DefaultEndpoint is where the lookup service listens in development.
	DefaultEndpoint = "http://localhost:4555/fetch_configuration_items"

	// DefaultTimeout bounds one lookup, including reading the body.
	DefaultTimeout = 8 * time.Second

	maxResponseBytes = 1 << 20
)

// Client fetches configurable items over HTTP.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	log      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client posting to endpoint. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		timeout:  DefaultTimeout,
		http:     &http.Client{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

type fetchRequest struct {
	Keyword string `json:"keyword"`
}

type fetchResponse struct {
	Items *[]RawItem `json:"items"`
}

// FetchItems posts {"keyword": ...} and returns the normalized items.
// Every failure is a *FetchError.
func (c *Client) FetchItems(ctx context.Context, keyword session.Keyword) ([]session.ConfigurableItem, error) {
	start := time.Now()
	items, err := c.fetch(ctx, keyword)
	metrics.RecordLookup(keyword, time.Since(start), err)
	return items, err
}

func (c *Client) fetch(ctx context.Context, keyword session.Keyword) ([]session.ConfigurableItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	log := c.log.With(zap.String("keyword", string(keyword)), zap.String("request_id", requestID))
	fail := func(status int, err error) error {
		log.Warn("lookup failed", zap.Int("status", status), zap.Error(err))
		return &FetchError{Keyword: keyword, StatusCode: status, Err: err}
	}

	body, err := json.Marshal(fetchRequest{Keyword: string(keyword)})
	if err != nil {
		return nil, fail(0, fmt.Errorf("encode request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fail(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, fmt.Errorf("lookup request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fail(resp.StatusCode, fmt.Errorf("lookup returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}

	var out fetchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if out.Items == nil {
		return nil, fail(resp.StatusCode, errMissingItems)
	}
	items := Normalize(*out.Items)
	log.Debug("lookup ok", zap.Int("items", len(items)))
	return items, nil
}
