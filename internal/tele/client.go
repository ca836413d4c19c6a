package tele

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/telesearch/telesearch/internal/config"
)

// DefaultPageSize is the fixed result page size used by the UI.
const DefaultPageSize = 10

var (
	ErrAPIError = errors.New("tele search API error")
)

// Client is a client for the tele search backend.
type Client struct {
	httpClient *http.Client
	config     config.SearchConfig
	logger     zerolog.Logger
}

// NewClient creates a new tele search client.
func NewClient(cfg config.SearchConfig, logger zerolog.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tele").Logger(),
	}
}

// PageSize returns the configured result page size.
func (c *Client) PageSize() int {
	return c.config.PageSize
}

// Search runs a free-text query and returns one page of results using
// the configured page size.
func (c *Client) Search(ctx context.Context, query string, page int) ([]Result, error) {
	return c.SearchPage(ctx, query, page, c.config.PageSize)
}

// SearchPage runs a free-text query against the tele index.
// The offset is derived from the 1-based page number. Transport and
// backend failures are returned to the caller; a response whose hit
// collection is missing or not list-shaped yields zero results instead,
// so a malformed reply never takes the UI down.
func (c *Client) SearchPage(ctx context.Context, query string, page, size int) ([]Result, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	reqBody := Request{
		Size:      size,
		From:      (page - 1) * size,
		Explain:   true,
		Highlight: map[string]any{},
		Query: MatchQuery{
			Boost: 1,
			Match: query,
		},
		Fields: []string{"*"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.config.BaseURL + "/api/tele/_search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("query", query).
			Msg("tele search error")
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Any body without a list-shaped hit collection counts as zero
	// results, whether hits is absent, not a list, or the body is not
	// an object at all.
	var envelope struct {
		Hits json.RawMessage `json:"hits"`
	}
	var hits []hit
	if json.Unmarshal(body, &envelope) != nil ||
		len(envelope.Hits) == 0 ||
		json.Unmarshal(envelope.Hits, &hits) != nil {
		c.logger.Debug().Str("query", query).Msg("response carried no hit list")
		return []Result{}, nil
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			ID:        h.ID,
			Score:     h.Score,
			Source:    h.Fields,
			Highlight: h.Fragments,
		}
	}

	c.logger.Debug().
		Str("query", query).
		Int("page", page).
		Int("results", len(results)).
		Msg("search completed")

	return results, nil
}
