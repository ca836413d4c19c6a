// Package presenter owns all interactive search state and orchestrates
// the search and suggestion clients. One Presenter serves one client
// session; its methods must only be called from the owning session
// loop, so no locking happens here.
package presenter

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/telesearch/telesearch/internal/query"
	"github.com/telesearch/telesearch/internal/tele"
	"github.com/telesearch/telesearch/internal/tmdb"
)

// Fixed user-visible messages. The underlying cause of a search
// failure is logged, never shown.
const (
	MsgBlankQuery   = "Please enter a search query"
	MsgSearchFailed = "Failed to fetch search results. Please try again."
)

// DebounceInterval is the quiet period before a suggestion fetch fires.
const DebounceInterval = 300 * time.Millisecond

// MinSuggestLength is the shortest trimmed input worth a suggestion call.
const MinSuggestLength = 2

// Searcher is the search client dependency.
type Searcher interface {
	SearchPage(ctx context.Context, q string, page, size int) ([]tele.Result, error)
}

// Suggester is the metadata suggestion dependency. Implementations
// degrade to an empty list on failure rather than returning an error.
type Suggester interface {
	Suggest(ctx context.Context, q string) []tmdb.Suggestion
}

// Options configures a Presenter.
type Options struct {
	Searcher        Searcher
	Suggester       Suggester
	DownloadBaseURL string
	PageSize        int
	Debounce        time.Duration
	// Dispatch re-enters the owning session loop; the debounce timer
	// fires on its own goroutine and must hop back before touching
	// state. A nil Dispatch runs the callback inline (tests).
	Dispatch func(func())
	// Publish, when set, receives a view snapshot after every state
	// change, including intermediate loading states.
	Publish func(View)
	// PosterURL resolves a TMDB poster path to a full image URL.
	PosterURL func(path, size string) string
	Logger    zerolog.Logger
}

// Presenter is the search page state machine.
type Presenter struct {
	opts Options

	queryText   string
	suggestions []tmdb.Suggestion
	selection   query.Selection
	movieYear   int
	season      int
	episode     int

	results           []tele.Result
	currentPage       int
	lastSearchedQuery string
	loading           bool
	errorMsg          string
	hasSearched       bool

	debounce   *time.Timer
	suggestSeq int
	logger     zerolog.Logger
}

// New creates a presenter in its initial state.
func New(opts Options) *Presenter {
	if opts.PageSize <= 0 {
		opts.PageSize = tele.DefaultPageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DebounceInterval
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) { fn() }
	}
	return &Presenter{
		opts:        opts,
		currentPage: 1,
		logger:      opts.Logger.With().Str("component", "presenter").Logger(),
	}
}

// Close cancels the pending debounce timer, if any.
func (p *Presenter) Close() {
	p.stopDebounce()
}

// SetQuery handles a raw text edit. Editing the text deactivates any
// selection and its overrides (the two input modes are mutually
// exclusive) and restarts the suggestion debounce timer.
func (p *Presenter) SetQuery(q string) {
	p.queryText = q
	p.selection = query.Selection{}
	p.movieYear = 0
	p.season = 0
	p.episode = 0
	p.hasSearched = false

	p.stopDebounce()
	p.suggestSeq++

	trimmed := strings.TrimSpace(q)
	if len(trimmed) < MinSuggestLength {
		p.suggestions = nil
		p.publish()
		return
	}

	seq := p.suggestSeq
	p.debounce = time.AfterFunc(p.opts.Debounce, func() {
		p.opts.Dispatch(func() { p.fireSuggestions(trimmed, seq) })
	})
	p.publish()
}

// fireSuggestions runs on the session loop when the debounce elapses.
// A stale fire (input changed since it was armed) is dropped.
func (p *Presenter) fireSuggestions(q string, seq int) {
	if seq != p.suggestSeq || p.opts.Suggester == nil {
		return
	}
	p.suggestions = p.opts.Suggester.Suggest(context.Background(), q)
	p.publish()
}

// SelectSuggestion replaces the raw text with the suggestion's title
// and activates a selection. It never triggers a search.
func (p *Presenter) SelectSuggestion(s tmdb.Suggestion) {
	p.stopDebounce()
	p.suggestSeq++
	p.suggestions = nil

	p.queryText = s.Title
	p.selection = query.Selection{
		MediaType:  string(s.MediaType),
		Title:      s.Title,
		Year:       s.Year,
		PosterPath: s.PosterPath,
	}
	p.movieYear = 0
	p.season = 0
	p.episode = 0
	if s.MediaType == tmdb.MediaTypeMovie {
		p.movieYear = s.Year
	}
	p.publish()
}

// SetMovieYear records the release-year refinement for a movie selection.
func (p *Presenter) SetMovieYear(year int) {
	p.movieYear = year
	p.publish()
}

// SetSeason records the season refinement for a TV selection.
func (p *Presenter) SetSeason(season int) {
	p.season = season
	p.publish()
}

// SetEpisode records the episode refinement for a TV selection.
func (p *Presenter) SetEpisode(episode int) {
	p.episode = episode
	p.publish()
}

// ComposedQuery derives the query string that a submit would send.
// Recomputed on demand; never cached.
func (p *Presenter) ComposedQuery() string {
	return query.Compose(p.selection, p.queryText, p.movieYear, p.season, p.episode)
}

// Submit runs an explicit search on page 1. A blank composed query is
// rejected locally with a fixed message and no network call.
func (p *Presenter) Submit(ctx context.Context) {
	p.search(ctx, p.ComposedQuery(), 1)
}

// GoToPage re-issues the last searched query for the requested page.
func (p *Presenter) GoToPage(ctx context.Context, page int) {
	q := p.lastSearchedQuery
	if q == "" {
		q = p.ComposedQuery()
	}
	p.search(ctx, q, page)
}

func (p *Presenter) search(ctx context.Context, searchQuery string, page int) {
	if p.loading {
		return
	}
	if page < 1 {
		page = 1
	}

	if strings.TrimSpace(searchQuery) == "" {
		p.errorMsg = MsgBlankQuery
		p.results = nil
		p.currentPage = 1
		p.publish()
		return
	}

	p.loading = true
	p.errorMsg = ""
	p.hasSearched = true
	p.lastSearchedQuery = searchQuery
	// Discard the previous page right away so a slow response never
	// flashes stale results.
	p.results = nil
	p.publish()

	results, err := p.opts.Searcher.SearchPage(ctx, searchQuery, page, p.opts.PageSize)
	p.loading = false
	if err != nil {
		p.logger.Error().Err(err).Str("query", searchQuery).Int("page", page).Msg("search failed")
		p.errorMsg = MsgSearchFailed
		p.publish()
		return
	}

	p.results = results
	// The page number comes from what was asked for; the backend
	// reports no authoritative total.
	p.currentPage = page
	p.publish()
}

// Reset returns every piece of state to its initial value, as if the
// page had just loaded.
func (p *Presenter) Reset() {
	p.stopDebounce()
	p.suggestSeq++

	p.queryText = ""
	p.suggestions = nil
	p.selection = query.Selection{}
	p.movieYear = 0
	p.season = 0
	p.episode = 0
	p.results = nil
	p.currentPage = 1
	p.lastSearchedQuery = ""
	p.loading = false
	p.errorMsg = ""
	p.hasSearched = false
	p.publish()
}

// View builds a full snapshot of the current display state.
func (p *Presenter) View() View {
	v := View{
		Query:             p.queryText,
		ComposedQuery:     p.ComposedQuery(),
		MovieYear:         p.movieYear,
		Season:            p.season,
		Episode:           p.episode,
		Loading:           p.loading,
		Error:             p.errorMsg,
		HasSearched:       p.hasSearched,
		Results:           BuildResults(p.results, p.opts.DownloadBaseURL),
		Page:              p.currentPage,
		LastSearchedQuery: p.lastSearchedQuery,
		HasPrevPage:       p.currentPage > 1,
		// Approximation: a full page suggests more may follow. The
		// backend reports no total, so this is as good as it gets.
		HasNextPage: len(p.results) == p.opts.PageSize,
	}

	v.Suggestions = make([]SuggestionView, len(p.suggestions))
	for i, s := range p.suggestions {
		v.Suggestions[i] = SuggestionView{Suggestion: s, PosterURL: p.posterURL(s.PosterPath, "w92")}
	}

	if p.selection.Active() {
		v.Selection = SelectionView{
			Active:    true,
			MediaType: p.selection.MediaType,
			Title:     p.selection.Title,
			Year:      p.selection.Year,
			PosterURL: p.posterURL(p.selection.PosterPath, "w154"),
		}
	}

	return v
}

func (p *Presenter) posterURL(path, size string) string {
	if p.opts.PosterURL == nil || path == "" {
		return ""
	}
	return p.opts.PosterURL(path, size)
}

func (p *Presenter) stopDebounce() {
	if p.debounce != nil {
		p.debounce.Stop()
		p.debounce = nil
	}
}

func (p *Presenter) publish() {
	if p.opts.Publish != nil {
		p.opts.Publish(p.View())
	}
}
