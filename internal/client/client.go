// Package client talks to a running LiveLink server over its JSON API.
package client

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

	"livelink/internal/alert"
	"livelink/internal/departure"
	"livelink/internal/stop"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 10 * time.Second
	apiPrefix       = "/api/v1"
)

// Client is an HTTP client for the LiveLink API.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *Cache
	logger  *slog.Logger
}

// Health is the body of GET /health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// reason prefers the error field, which the server fills on failures.
func (e envelope) reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		cache:  NewCache(defaultCacheTTL),
		logger: logger,
	}
}

// Departures fetches projected departures for every stop in a pincode.
func (c *Client) Departures(ctx context.Context, pincode string) ([]departure.Projection, error) {
	var out []departure.Projection
	q := url.Values{"pincode": {pincode}}
	if err := c.get(ctx, "/departures?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("departures for pincode %s: %w", pincode, err)
	}
	return out, nil
}

// DeparturesForStop fetches projected departures for one stop.
func (c *Client) DeparturesForStop(ctx context.Context, stopID string) ([]departure.Projection, error) {
	var out []departure.Projection
	if err := c.get(ctx, "/departures/stop/"+url.PathEscape(stopID), &out); err != nil {
		return nil, fmt.Errorf("departures for stop %s: %w", stopID, err)
	}
	return out, nil
}

// LiveDepartures fetches projected departures for a list of stops. It is
// never cached.
func (c *Client) LiveDepartures(ctx context.Context, stopIDs []string) ([]departure.Projection, error) {
	body, err := json.Marshal(map[string][]string{"stopIds": stopIDs})
	if err != nil {
		return nil, fmt.Errorf("encode stop ids: %w", err)
	}
	var out []departure.Projection
	if err := c.do(ctx, http.MethodPost, "/departures/live", bytes.NewReader(body), &out); err != nil {
		return nil, fmt.Errorf("live departures: %w", err)
	}
	return out, nil
}

// Alerts fetches active alerts, optionally restricted to the lines serving a pincode.
func (c *Client) Alerts(ctx context.Context, pincode string) ([]alert.Alert, error) {
	path := "/alerts"
	if pincode != "" {
		path += "?" + url.Values{"pincode": {pincode}}.Encode()
	}
	var out []alert.Alert
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	return out, nil
}

// AlertsForLine fetches active alerts affecting one line number.
func (c *Client) AlertsForLine(ctx context.Context, line string) ([]alert.Alert, error) {
	var out []alert.Alert
	if err := c.get(ctx, "/alerts/line/"+url.PathEscape(line), &out); err != nil {
		return nil, fmt.Errorf("alerts for line %s: %w", line, err)
	}
	return out, nil
}

// Stops lists the active stops in a pincode.
func (c *Client) Stops(ctx context.Context, pincode string) ([]stop.Stop, error) {
	var out []stop.Stop
	q := url.Values{"pincode": {pincode}}
	if err := c.get(ctx, "/stops?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("stops for pincode %s: %w", pincode, err)
	}
	return out, nil
}

// SearchStops runs a free-text stop search.
func (c *Client) SearchStops(ctx context.Context, query string) ([]stop.Stop, error) {
	var out []stop.Stop
	q := url.Values{"q": {query}}
	if err := c.get(ctx, "/stops/search?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("search stops %q: %w", query, err)
	}
	return out, nil
}

// Health checks that the server is up. The response is not enveloped.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.send(ctx, http.MethodGet, apiPrefix+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return &h, nil
}

// get serves GET requests from the cache when possible. Cached values are
// stored as raw envelope data so callers never share decoded slices.
func (c *Client) get(ctx context.Context, path string, v any) error {
	if cached, ok := c.cache.Get(path); ok {
		return json.Unmarshal(cached.(json.RawMessage), v)
	}
	data, err := c.fetch(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	c.cache.Set(path, data)
	return json.Unmarshal(data, v)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, v any) error {
	data, err := c.fetch(ctx, method, path, body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (c *Client) fetch(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	resp, err := c.send(ctx, method, apiPrefix+path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: path, Message: env.reason()}
	}
	if len(env.Data) == 0 {
		return json.RawMessage("null"), nil
	}
	return env.Data, nil
}

// send performs the request and turns non-2xx statuses into *APIError,
// using the envelope message when the server provided one.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: path}
		var env envelope
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&env) == nil {
			apiErr.Message = env.reason()
		}
		return nil, apiErr
	}
	return resp, nil
}
