package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/telesearch/telesearch/internal/presenter"
	"github.com/telesearch/telesearch/internal/stream"
	"github.com/telesearch/telesearch/internal/tmdb"
)

// SearchResponse is the stateless search reply. It mirrors the session
// view's result page so the frontend renders both the same way.
type SearchResponse struct {
	Query       string                 `json:"query"`
	Page        int                    `json:"page"`
	Results     []presenter.ResultView `json:"results"`
	HasPrevPage bool                   `json:"hasPrevPage"`
	HasNextPage bool                   `json:"hasNextPage"`
}

// SuggestResponse wraps title suggestions.
type SuggestResponse struct {
	Suggestions []tmdb.Suggestion `json:"suggestions"`
}

// search runs one index query.
// GET /api/v1/search?q=...&page=N
func (s *Server) search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, presenter.MsgBlankQuery)
	}

	page := 1
	if p := c.QueryParam("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	results, err := s.searcher.Search(c.Request().Context(), query, page)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Int("page", page).Msg("search failed")
		return echo.NewHTTPError(http.StatusBadGateway, presenter.MsgSearchFailed)
	}

	return c.JSON(http.StatusOK, SearchResponse{
		Query:       query,
		Page:        page,
		Results:     presenter.BuildResults(results, s.cfg.Download.BaseURL),
		HasPrevPage: page > 1,
		HasNextPage: len(results) == s.teleClient.PageSize(),
	})
}

// suggest returns title suggestions for an in-progress query. It never
// fails; lookup problems just yield an empty list.
// GET /api/v1/suggest?q=...
func (s *Server) suggest(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))

	var suggestions []tmdb.Suggestion
	if len(query) >= presenter.MinSuggestLength {
		suggestions = s.tmdbClient.Suggest(c.Request().Context(), query)
	}
	if suggestions == nil {
		suggestions = []tmdb.Suggestion{}
	}

	return c.JSON(http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

// classifyStream reports how a media URL should be played.
// GET /api/v1/stream/classify?url=...
func (s *Server) classifyStream(c echo.Context) error {
	return c.JSON(http.StatusOK, stream.BuildView(c.QueryParam("url")))
}
