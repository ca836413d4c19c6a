package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/telesearch/telesearch/internal/config"
)

// Client is a TMDB API client used for title suggestions.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Suggest returns movie and TV title suggestions for a partial query.
// Suggestions are best-effort decoration of the search flow: a missing
// API key, a transport failure or a malformed reply all yield an empty
// list, never an error. Callers should not bother invoking it for
// inputs shorter than two characters.
func (c *Client) Suggest(ctx context.Context, query string) []Suggestion {
	if !c.IsConfigured() {
		return []Suggestion{}
	}

	endpoint := fmt.Sprintf("%s/search/multi", c.config.BaseURL)
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", "1")
	params.Set("api_key", c.config.APIKey)

	var response multiSearchResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		c.logger.Debug().Err(err).Str("query", query).Msg("suggestion lookup failed")
		return []Suggestion{}
	}

	suggestions := make([]Suggestion, 0, len(response.Results))
	for _, r := range response.Results {
		switch r.MediaType {
		case "movie":
			suggestions = append(suggestions, Suggestion{
				ID:         r.ID,
				MediaType:  MediaTypeMovie,
				Title:      firstNonEmpty(r.Title, r.OriginalTitle),
				Year:       yearOf(r.ReleaseDate),
				PosterPath: posterOf(r.PosterPath),
			})
		case "tv":
			suggestions = append(suggestions, Suggestion{
				ID:         r.ID,
				MediaType:  MediaTypeTV,
				Title:      firstNonEmpty(r.Name, r.OriginalName),
				Year:       yearOf(r.FirstAirDate),
				PosterPath: posterOf(r.PosterPath),
			})
		}
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(suggestions)).
		Msg("suggestion lookup completed")

	return suggestions
}

// PosterURL returns a full image URL for a given poster path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "original"
func (c *Client) PosterURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}

func posterOf(path *string) string {
	if path == nil {
		return ""
	}
	return *path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
