// Package scoring implements the score submission API: an HTTP client used by
// the typing session and the service that answers it.
package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/verte-zerg/typesprint/internal/model"
)

const (
	saveScorePath = "/api/save_score"
	bestsPath     = "/api/bests"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 5 * time.Second

	maxResponseBytes = 1 << 20
)

// ErrMalformedResponse is returned when a reply lacks required fields.
var ErrMalformedResponse = errors.New("malformed score response")

// Client talks to a scoring service.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SaveScore submits a finished session and returns the service's best for the mode.
func (c *Client) SaveScore(ctx context.Context, req model.ScoreRequest) (model.ScoreResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.ScoreResponse{}, fmt.Errorf("failed to encode score: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+saveScorePath, bytes.NewReader(body))
	if err != nil {
		return model.ScoreResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp model.ScoreResponse
	if err := c.do(httpReq, &resp); err != nil {
		return model.ScoreResponse{}, err
	}
	if resp.MaxWPM == nil {
		return model.ScoreResponse{}, ErrMalformedResponse
	}
	return resp, nil
}

// Bests returns the per-mode bests recorded by the service.
func (c *Client) Bests(ctx context.Context) ([]model.Best, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+bestsPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	var bests []model.Best
	if err := c.do(httpReq, &bests); err != nil {
		return nil, err
	}
	return bests, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach scoring service: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("scoring service returned %s", resp.Status)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
