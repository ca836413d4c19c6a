package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/telesearch/telesearch/internal/tele"
	"github.com/telesearch/telesearch/internal/tmdb"
)

type searchCall struct {
	query string
	page  int
	size  int
}

type fakeSearcher struct {
	results []tele.Result
	err     error
	calls   []searchCall
}

func (f *fakeSearcher) SearchPage(ctx context.Context, q string, page, size int) ([]tele.Result, error) {
	f.calls = append(f.calls, searchCall{query: q, page: page, size: size})
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeSuggester struct {
	suggestions []tmdb.Suggestion
	calls       []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, q string) []tmdb.Suggestion {
	f.calls = append(f.calls, q)
	return f.suggestions
}

func makeResults(n int) []tele.Result {
	results := make([]tele.Result, n)
	for i := range results {
		results[i] = tele.Result{ID: "hit", Score: 1, Source: tele.Fields{Tokens: "doc"}}
	}
	return results
}

// newTestPresenter drops debounce fires so nothing runs off the test
// goroutine. Debounce behavior has its own tests with a channel dispatch.
func newTestPresenter(searcher *fakeSearcher, suggester *fakeSuggester) *Presenter {
	return New(Options{
		Searcher:        searcher,
		Suggester:       suggester,
		DownloadBaseURL: "http://dl",
		PageSize:        10,
		Debounce:        time.Millisecond,
		Dispatch:        func(func()) {},
		Logger:          zerolog.Nop(),
	})
}

func TestPresenter_InitialView(t *testing.T) {
	p := newTestPresenter(&fakeSearcher{}, &fakeSuggester{})
	defer p.Close()

	v := p.View()
	if v.Query != "" || v.HasSearched || v.Loading || v.Error != "" {
		t.Errorf("initial view not pristine: %+v", v)
	}
	if v.Page != 1 {
		t.Errorf("Page = %d, want 1", v.Page)
	}
	if v.HasPrevPage || v.HasNextPage {
		t.Error("pagination enabled before any search")
	}
}

func TestPresenter_SubmitBlankQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			p := newTestPresenter(searcher, &fakeSuggester{})
			defer p.Close()

			p.SetQuery(tt.input)
			p.Submit(context.Background())

			if len(searcher.calls) != 0 {
				t.Errorf("search called %d times, want 0", len(searcher.calls))
			}
			v := p.View()
			if v.Error != MsgBlankQuery {
				t.Errorf("Error = %q, want %q", v.Error, MsgBlankQuery)
			}
			if v.Page != 1 {
				t.Errorf("Page = %d, want 1", v.Page)
			}
		})
	}
}

func TestPresenter_SubmitSuccess(t *testing.T) {
	searcher := &fakeSearcher{results: makeResults(3)}
	p := newTestPresenter(searcher, &fakeSuggester{})
	defer p.Close()

	p.SetQuery("inception")
	p.Submit(context.Background())

	if len(searcher.calls) != 1 {
		t.Fatalf("search called %d times, want 1", len(searcher.calls))
	}
	call := searcher.calls[0]
	if call.query != "inception" || call.page != 1 || call.size != 10 {
		t.Errorf("search call = %+v", call)
	}

	v := p.View()
	if !v.HasSearched {
		t.Error("HasSearched = false, want true")
	}
	if v.Loading {
		t.Error("Loading = true after completion")
	}
	if len(v.Results) != 3 {
		t.Errorf("Results = %d, want 3", len(v.Results))
	}
	if v.LastSearchedQuery != "inception" {
		t.Errorf("LastSearchedQuery = %q", v.LastSearchedQuery)
	}
}

func TestPresenter_SubmitFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	p := newTestPresenter(searcher, &fakeSuggester{})
	defer p.Close()

	p.SetQuery("inception")
	p.Submit(context.Background())

	v := p.View()
	if v.Error != MsgSearchFailed {
		t.Errorf("Error = %q, want the fixed failure message", v.Error)
	}
	if v.Loading {
		t.Error("Loading = true after failure")
	}
	if len(v.Results) != 0 {
		t.Errorf("Results = %d, want 0", len(v.Results))
	}
}

func TestPresenter_SubmitPublishesLoadingState(t *testing.T) {
	searcher := &fakeSearcher{results: makeResults(2)}
	var published []View

	p := New(Options{
		Searcher: searcher,
		PageSize: 10,
		Publish:  func(v View) { published = append(published, v) },
		Logger:   zerolog.Nop(),
	})
	defer p.Close()

	p.SetQuery("dune")
	published = nil
	p.Submit(context.Background())

	if len(published) != 2 {
		t.Fatalf("published %d views, want 2", len(published))
	}
	first, last := published[0], published[1]
	if !first.Loading || len(first.Results) != 0 {
		t.Errorf("first snapshot loading=%v results=%d, want loading with no results", first.Loading, len(first.Results))
	}
	if last.Loading || len(last.Results) != 2 {
		t.Errorf("last snapshot loading=%v results=%d, want settled with results", last.Loading, len(last.Results))
	}
}

func TestPresenter_Pagination(t *testing.T) {
	t.Run("full page enables next", func(t *testing.T) {
		p := newTestPresenter(&fakeSearcher{results: makeResults(10)}, &fakeSuggester{})
		defer p.Close()

		p.SetQuery("dune")
		p.Submit(context.Background())

		v := p.View()
		if !v.HasNextPage {
			t.Error("HasNextPage = false for a full page")
		}
		if v.HasPrevPage {
			t.Error("HasPrevPage = true on page 1")
		}
	})

	t.Run("short page disables next", func(t *testing.T) {
		p := newTestPresenter(&fakeSearcher{results: makeResults(7)}, &fakeSuggester{})
		defer p.Close()

		p.SetQuery("dune")
		p.Submit(context.Background())

		if p.View().HasNextPage {
			t.Error("HasNextPage = true for a short page")
		}
	})

	t.Run("page two enables prev", func(t *testing.T) {
		searcher := &fakeSearcher{results: makeResults(10)}
		p := newTestPresenter(searcher, &fakeSuggester{})
		defer p.Close()

		p.SetQuery("dune")
		p.Submit(context.Background())
		p.GoToPage(context.Background(), 2)

		v := p.View()
		if v.Page != 2 {
			t.Errorf("Page = %d, want 2", v.Page)
		}
		if !v.HasPrevPage {
			t.Error("HasPrevPage = false on page 2")
		}
		if got := searcher.calls[1]; got.page != 2 || got.query != "dune" {
			t.Errorf("second search call = %+v", got)
		}
	})
}

func TestPresenter_GoToPageReusesLastQuery(t *testing.T) {
	searcher := &fakeSearcher{results: makeResults(10)}
	p := newTestPresenter(searcher, &fakeSuggester{})
	defer p.Close()

	p.SetQuery("dune")
	p.Submit(context.Background())

	// Editing the input does not change what pagination searches for.
	p.SetQuery("something else entirely")
	p.GoToPage(context.Background(), 2)

	if got := searcher.calls[1].query; got != "dune" {
		t.Errorf("page 2 searched %q, want %q", got, "dune")
	}
}

func TestPresenter_SelectSuggestion(t *testing.T) {
	searcher := &fakeSearcher{}
	p := newTestPresenter(searcher, &fakeSuggester{})
	defer p.Close()

	p.SetQuery("incep")
	p.SelectSuggestion(tmdb.Suggestion{
		ID:        27205,
		MediaType: tmdb.MediaTypeMovie,
		Title:     "Inception",
		Year:      2010,
	})

	if len(searcher.calls) != 0 {
		t.Error("selecting a suggestion triggered a search")
	}

	v := p.View()
	if v.Query != "Inception" {
		t.Errorf("Query = %q, want replaced by title", v.Query)
	}
	if v.Selection.MediaType != "movie" {
		t.Errorf("Selection.MediaType = %q, want movie", v.Selection.MediaType)
	}
	if v.MovieYear != 2010 {
		t.Errorf("MovieYear = %d, want pre-filled 2010", v.MovieYear)
	}
	if v.ComposedQuery != "Inception 2010" {
		t.Errorf("ComposedQuery = %q, want %q", v.ComposedQuery, "Inception 2010")
	}
}

func TestPresenter_SelectionActiveInViewJSON(t *testing.T) {
	p := newTestPresenter(&fakeSearcher{}, &fakeSuggester{})
	defer p.Close()

	p.SelectSuggestion(tmdb.Suggestion{ID: 27205, MediaType: tmdb.MediaTypeMovie, Title: "Inception", Year: 2010})

	var decoded struct {
		Selection struct {
			Active    bool   `json:"active"`
			MediaType string `json:"mediaType"`
		} `json:"selection"`
	}

	data, err := json.Marshal(p.View())
	if err != nil {
		t.Fatalf("failed to marshal view: %v", err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	if !decoded.Selection.Active {
		t.Error("selection.active = false in view JSON, want true")
	}
	if decoded.Selection.MediaType != "movie" {
		t.Errorf("selection.mediaType = %q, want movie", decoded.Selection.MediaType)
	}

	// Editing the text deactivates the selection in the JSON too.
	p.SetQuery("Inception extras")
	data, err = json.Marshal(p.View())
	if err != nil {
		t.Fatalf("failed to marshal view: %v", err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	if decoded.Selection.Active {
		t.Error("selection.active = true after a text edit, want false")
	}
}

func TestPresenter_TVRefinements(t *testing.T) {
	p := newTestPresenter(&fakeSearcher{}, &fakeSuggester{})
	defer p.Close()

	p.SelectSuggestion(tmdb.Suggestion{ID: 1396, MediaType: tmdb.MediaTypeTV, Title: "Breaking Bad", Year: 2008})
	p.SetSeason(1)
	p.SetEpisode(2)

	if got := p.ComposedQuery(); got != "Breaking Bad s01e02" {
		t.Errorf("ComposedQuery() = %q, want %q", got, "Breaking Bad s01e02")
	}

	p.SetEpisode(0)
	if got := p.ComposedQuery(); got != "Breaking Bad s01" {
		t.Errorf("ComposedQuery() = %q, want %q", got, "Breaking Bad s01")
	}
}

func TestPresenter_EditClearsSelection(t *testing.T) {
	p := newTestPresenter(&fakeSearcher{}, &fakeSuggester{})
	defer p.Close()

	p.SelectSuggestion(tmdb.Suggestion{ID: 1396, MediaType: tmdb.MediaTypeTV, Title: "Breaking Bad", Year: 2008})
	p.SetSeason(3)
	p.SetQuery("Breaking Bad extras")

	v := p.View()
	if v.Selection.MediaType != "" {
		t.Error("selection survived a text edit")
	}
	if v.Season != 0 {
		t.Errorf("Season = %d, want cleared", v.Season)
	}
	if got := p.ComposedQuery(); got != "Breaking Bad extras" {
		t.Errorf("ComposedQuery() = %q, want raw text", got)
	}
}

func TestPresenter_SuggestionDebounce(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []tmdb.Suggestion{{ID: 1, MediaType: tmdb.MediaTypeMovie, Title: "Dune"}}}
	fired := make(chan func(), 8)

	p := New(Options{
		Searcher:  &fakeSearcher{},
		Suggester: suggester,
		PageSize:  10,
		Debounce:  5 * time.Millisecond,
		Dispatch:  func(fn func()) { fired <- fn },
		Logger:    zerolog.Nop(),
	})
	defer p.Close()

	// Rapid edits: only the final value should reach the suggester.
	p.SetQuery("d")
	p.SetQuery("du")
	p.SetQuery("dune")

	select {
	case fn := <-fired:
		fn()
	case <-time.After(time.Second):
		t.Fatal("debounce never fired")
	}

	if len(suggester.calls) != 1 {
		t.Fatalf("suggester called %d times, want 1", len(suggester.calls))
	}
	if suggester.calls[0] != "dune" {
		t.Errorf("suggester queried %q, want %q", suggester.calls[0], "dune")
	}
	if got := p.View().Suggestions; len(got) != 1 || got[0].Title != "Dune" {
		t.Errorf("Suggestions = %v", got)
	}
}

func TestPresenter_StaleSuggestionDropped(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []tmdb.Suggestion{{ID: 1, MediaType: tmdb.MediaTypeMovie, Title: "Dune"}}}
	fired := make(chan func(), 8)

	p := New(Options{
		Searcher:  &fakeSearcher{},
		Suggester: suggester,
		PageSize:  10,
		Debounce:  5 * time.Millisecond,
		Dispatch:  func(fn func()) { fired <- fn },
		Logger:    zerolog.Nop(),
	})
	defer p.Close()

	p.SetQuery("dune")

	var stale func()
	select {
	case stale = <-fired:
	case <-time.After(time.Second):
		t.Fatal("debounce never fired")
	}

	// Input changes before the armed fetch runs on the loop.
	p.SetQuery("dune part two")
	stale()

	if len(suggester.calls) != 0 {
		t.Errorf("stale fetch still ran: %v", suggester.calls)
	}

	// The fetch for the newer input goes through.
	select {
	case fn := <-fired:
		fn()
	case <-time.After(time.Second):
		t.Fatal("second debounce never fired")
	}
	if len(suggester.calls) != 1 || suggester.calls[0] != "dune part two" {
		t.Errorf("suggester calls = %v, want [dune part two]", suggester.calls)
	}
}

func TestPresenter_ShortQueryClearsSuggestions(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []tmdb.Suggestion{{ID: 1, MediaType: tmdb.MediaTypeMovie, Title: "Dune"}}}
	fired := make(chan func(), 8)

	p := New(Options{
		Searcher:  &fakeSearcher{},
		Suggester: suggester,
		PageSize:  10,
		Debounce:  5 * time.Millisecond,
		Dispatch:  func(fn func()) { fired <- fn },
		Logger:    zerolog.Nop(),
	})
	defer p.Close()

	p.SetQuery("du")
	select {
	case fn := <-fired:
		fn()
	case <-time.After(time.Second):
		t.Fatal("debounce never fired")
	}
	if len(p.View().Suggestions) != 1 {
		t.Fatal("expected suggestions before shortening the query")
	}

	p.SetQuery("d")

	if got := p.View().Suggestions; len(got) != 0 {
		t.Errorf("Suggestions = %v, want cleared for short input", got)
	}

	select {
	case <-fired:
		t.Error("debounce armed for a query below the minimum length")
	case <-time.After(20 * time.Millisecond):
	}
	if len(suggester.calls) != 1 {
		t.Errorf("suggester called %d times, want 1", len(suggester.calls))
	}
}

func TestPresenter_Reset(t *testing.T) {
	searcher := &fakeSearcher{results: makeResults(10)}
	p := newTestPresenter(searcher, &fakeSuggester{})
	defer p.Close()

	p.SelectSuggestion(tmdb.Suggestion{ID: 1, MediaType: tmdb.MediaTypeMovie, Title: "Inception", Year: 2010})
	p.Submit(context.Background())
	p.Reset()

	v := p.View()
	if v.Query != "" || v.ComposedQuery != "" {
		t.Errorf("query state survived reset: %+v", v)
	}
	if v.HasSearched || len(v.Results) != 0 || v.LastSearchedQuery != "" {
		t.Errorf("search state survived reset: %+v", v)
	}
	if v.Selection.MediaType != "" || v.MovieYear != 0 {
		t.Errorf("selection state survived reset: %+v", v)
	}
	if v.Page != 1 {
		t.Errorf("Page = %d, want 1", v.Page)
	}
}
