// Package history records explicit searches so recent queries can be
// revisited. Recording is best-effort decoration of the search flow
// and never fails a search.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service provides search history management.
type Service struct {
	db            *sql.DB
	retentionDays int
	logger        zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, retentionDays int, logger zerolog.Logger) *Service {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Service{
		db:            db,
		retentionDays: retentionDays,
		logger:        logger.With().Str("component", "history").Logger(),
	}
}

// Record stores one executed search.
func (s *Service) Record(ctx context.Context, searchQuery string, page, hitCount int) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO search_history (query, page, hit_count)
		VALUES (?, ?, ?)
		RETURNING id, query, page, hit_count, created_at`,
		searchQuery, page, hitCount,
	)

	entry := &Entry{}
	if err := row.Scan(&entry.ID, &entry.Query, &entry.Page, &entry.HitCount, &entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to record search: %w", err)
	}
	return entry, nil
}

// List returns history entries, newest first, with pagination.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100
	}

	var totalCount int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_history`).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, page, hit_count, created_at
		FROM search_history
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		opts.PageSize, (opts.Page-1)*opts.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0, opts.PageSize)
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.ID, &entry.Query, &entry.Page, &entry.HitCount, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int(totalCount) / opts.PageSize
	if int(totalCount)%opts.PageSize > 0 {
		totalPages++
	}

	return &ListResponse{
		Items:      entries,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// DeleteAll clears the history.
func (s *Service) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// CleanupOldEntries deletes entries older than the retention period.
func (s *Service) CleanupOldEntries(ctx context.Context) error {
	// Bound as text so it compares against CURRENT_TIMESTAMP values.
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays).Format("2006-01-02 15:04:05")
	result, err := s.db.ExecContext(ctx, `DELETE FROM search_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup history: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("cleaned up old history entries")
	}
	return nil
}
