package api

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/telesearch/telesearch/internal/history"
	"github.com/telesearch/telesearch/internal/tele"
)

// recordingSearcher decorates the index client with best-effort history
// recording. A failed write never fails the search.
type recordingSearcher struct {
	client  *tele.Client
	history *history.Service
	logger  zerolog.Logger
}

func newRecordingSearcher(client *tele.Client, historyService *history.Service, logger zerolog.Logger) *recordingSearcher {
	return &recordingSearcher{
		client:  client,
		history: historyService,
		logger:  logger.With().Str("component", "searcher").Logger(),
	}
}

// Search runs one page-sized query.
func (r *recordingSearcher) Search(ctx context.Context, query string, page int) ([]tele.Result, error) {
	return r.SearchPage(ctx, query, page, r.client.PageSize())
}

// SearchPage runs a query and records it on success.
func (r *recordingSearcher) SearchPage(ctx context.Context, query string, page, size int) ([]tele.Result, error) {
	results, err := r.client.SearchPage(ctx, query, page, size)
	if err != nil {
		return nil, err
	}

	if _, recErr := r.history.Record(ctx, query, page, len(results)); recErr != nil {
		r.logger.Warn().Err(recErr).Str("query", query).Msg("failed to record search history")
	}
	return results, nil
}
