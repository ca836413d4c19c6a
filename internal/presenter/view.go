package presenter

import (
	"fmt"
	"net/url"

	"github.com/telesearch/telesearch/internal/tele"
	"github.com/telesearch/telesearch/internal/tmdb"
)

// View is a full snapshot of the presenter's display state. Everything
// the UI shows is derived here; the UI itself holds no logic.
type View struct {
	Query             string           `json:"query"`
	ComposedQuery     string           `json:"composedQuery"`
	Suggestions       []SuggestionView `json:"suggestions"`
	Selection         SelectionView    `json:"selection"`
	MovieYear         int              `json:"movieYear,omitempty"`
	Season            int              `json:"season,omitempty"`
	Episode           int              `json:"episode,omitempty"`
	Loading           bool             `json:"loading"`
	Error             string           `json:"error,omitempty"`
	HasSearched       bool             `json:"hasSearched"`
	Results           []ResultView     `json:"results"`
	Page              int              `json:"page"`
	LastSearchedQuery string           `json:"lastSearchedQuery,omitempty"`
	HasPrevPage       bool             `json:"hasPrevPage"`
	HasNextPage       bool             `json:"hasNextPage"`
}

// SuggestionView is a suggestion decorated with a resolvable thumbnail URL.
type SuggestionView struct {
	tmdb.Suggestion
	PosterURL string `json:"posterUrl,omitempty"`
}

// SelectionView is the active refinement shown above the results. The
// frontend keys the refinement inputs off Active, so it must be carried
// explicitly in the JSON.
type SelectionView struct {
	Active    bool   `json:"active"`
	MediaType string `json:"mediaType,omitempty"`
	Title     string `json:"title,omitempty"`
	Year      int    `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// ResultView is one rendered search result.
type ResultView struct {
	ID string `json:"id"`
	// Title is the plain primary text: tokens, else file name, else id.
	Title string `json:"title"`
	// Fragments are backend-highlighted HTML snippets; when non-empty
	// they take precedence over Title for the primary line.
	Fragments   []string `json:"fragments,omitempty"`
	Score       string   `json:"score"`
	Size        string   `json:"size,omitempty"`
	File        string   `json:"file,omitempty"`
	DownloadURL string   `json:"downloadUrl,omitempty"`
	StreamURL   string   `json:"streamUrl,omitempty"`
}

// BuildResults maps raw search results onto their rendered form.
func BuildResults(results []tele.Result, downloadBaseURL string) []ResultView {
	views := make([]ResultView, len(results))
	for i, r := range results {
		views[i] = buildResult(r, downloadBaseURL)
	}
	return views
}

func buildResult(r tele.Result, downloadBaseURL string) ResultView {
	v := ResultView{
		ID:    r.ID,
		Title: firstNonEmpty(r.Source.Tokens, r.Source.File, r.ID),
		Score: fmt.Sprintf("%.2f", r.Score),
		File:  r.Source.File,
	}

	for _, key := range []string{"Tokens", "tokens"} {
		if frags := r.Highlight[key]; len(frags) > 0 {
			v.Fragments = frags
			break
		}
	}

	if r.Source.Size != nil {
		v.Size = FormatBytes(*r.Source.Size)
	}

	// A result is only downloadable when both identifiers resolved,
	// under either field schema.
	if r.Source.ChatID != "" && r.Source.FileID != "" {
		v.DownloadURL = fmt.Sprintf("%s/%s/%s", downloadBaseURL, r.Source.ChatID, r.Source.FileID)
		v.StreamURL = "/stream?url=" + url.QueryEscape(v.DownloadURL)
	}

	return v
}

// FormatBytes renders a byte count using binary units.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
