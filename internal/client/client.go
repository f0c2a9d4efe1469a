// Package client talks to the hexworks HTTP API: read-only observation plus
// the admin commands that drive the game.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Resources mirrors the resources object of GET /api/v1/status.
type Resources struct {
	Tiles            int     `json:"tiles"`
	Leak             int     `json:"leak"`
	HeatEfficiency   float64 `json:"heat_efficiency"`
	Coin             int     `json:"coin"`
	WoodDelivered    int     `json:"wood_delivered"`
	BuildsInProgress int     `json:"builds_in_progress"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Name       string         `json:"name"`
	ID         string         `json:"id"`
	Seed       int64          `json:"seed"`
	Turn       uint64         `json:"turn"`
	Resources  Resources      `json:"resources"`
	Scheduled  map[string]int `json:"scheduled"`
	Chunks     int            `json:"chunks"`
	Running    bool           `json:"running"`
	IntervalMS int64          `json:"interval_ms"`
}

// TurnResult mirrors POST /api/v1/end-turn.
type TurnResult struct {
	Turn       uint64   `json:"turn"`
	Visited    int      `json:"visited"`
	Refunded   int      `json:"refunded"`
	Errors     []string `json:"errors"`
	DurationUS int64    `json:"duration_us"`
}

// CellDetail mirrors GET /api/v1/cell/:x/:y.
type CellDetail struct {
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Variant   string   `json:"variant"`
	State     string   `json:"state"`
	Options   []string `json:"options"`
	Node      string   `json:"node"`
	Ledger    string   `json:"ledger,omitempty"`
	Scheduled bool     `json:"scheduled"`
}

// Viewport mirrors GET /api/v1/viewport. Columns run along x; each
// string holds one glyph per y.
type Viewport struct {
	X       int      `json:"x"`
	Y       int      `json:"y"`
	W       int      `json:"w"`
	H       int      `json:"h"`
	Columns []string `json:"columns"`
}

// Client calls the API. AdminKey may be empty for read-only use.
type Client struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// New creates a Client targeting the given API base URL.
func New(baseURL, adminKey string) *Client {
	return &Client{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Status fetches GET /api/v1/status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.fetchJSON(ctx, "/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Cell fetches the detail of one cell.
func (c *Client) Cell(ctx context.Context, x, y int) (*CellDetail, error) {
	var d CellDetail
	if err := c.fetchJSON(ctx, fmt.Sprintf("/api/v1/cell/%d/%d", x, y), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Viewport fetches a w by h window whose top-left is (x, y).
func (c *Client) Viewport(ctx context.Context, x, y, w, h int) (*Viewport, error) {
	var v Viewport
	path := fmt.Sprintf("/api/v1/viewport?x=%d&y=%d&w=%d&h=%d", x, y, w, h)
	if err := c.fetchJSON(ctx, path, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// EndTurn sends POST /api/v1/end-turn.
func (c *Client) EndTurn(ctx context.Context) (*TurnResult, error) {
	var r TurnResult
	if err := c.post(ctx, "/api/v1/end-turn", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Build sends POST /api/v1/build and returns the resulting cell state.
func (c *Client) Build(ctx context.Context, variant string, x, y int) (string, error) {
	req := map[string]any{"variant": variant, "x": x, "y": y}
	var resp struct {
		State string `json:"state"`
	}
	if err := c.post(ctx, "/api/v1/build", req, &resp); err != nil {
		return "", err
	}
	return resp.State, nil
}

// Snapshot asks the server to save the world now.
func (c *Client) Snapshot(ctx context.Context) error {
	return c.post(ctx, "/api/v1/snapshot", nil, nil)
}

// SetAutoplay sets the server's autoplay interval (0 pauses).
func (c *Client) SetAutoplay(ctx context.Context, interval time.Duration) error {
	return c.post(ctx, "/api/v1/autoplay", map[string]int64{"interval_ms": interval.Milliseconds()}, nil)
}

// WaitReady polls the status endpoint with exponential backoff until it
// responds or ctx is done.
func (c *Client) WaitReady(ctx context.Context) error {
	backoff := 100 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		_, err := c.Status(ctx)
		if err == nil {
			slog.Info("hexworks API is ready", "url", c.BaseURL)
			return nil
		}
		slog.Info("hexworks not ready, retrying...", "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("API not ready: %w", errors.Join(ctx.Err(), err))
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (c *Client) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// post sends an authenticated POST. A nil body sends no payload; a nil
// target discards the response.
func (c *Client) post(ctx context.Context, path string, body, target any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AdminKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StatusError is a non-200 response to a command.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("POST %s failed (%d): %s", e.Path, e.Code, e.Body)
}
