// Package query derives the final search string from the raw input and
// an optional structured refinement.
package query

import "fmt"

// Selection is an active title refinement chosen from a suggestion.
// MediaType and Title are set and cleared together: a Selection with
// one but not the other is invalid.
type Selection struct {
	MediaType  string // "movie", "tv" or "" when inactive
	Title      string
	Year       int
	PosterPath string
}

// Active reports whether a title refinement is in effect.
func (s Selection) Active() bool {
	return s.MediaType != "" && s.Title != ""
}

// Compose derives the query string sent to the search backend.
//
// A movie selection appends the year override when given, falling back
// to the selection's own year. A TV selection appends a zero-padded
// sNN or sNNeNN suffix; an episode without a season is ignored. With
// no active selection the raw input passes through unchanged.
func Compose(sel Selection, raw string, movieYear, season, episode int) string {
	if sel.Active() {
		switch sel.MediaType {
		case "movie":
			year := movieYear
			if year == 0 {
				year = sel.Year
			}
			if year > 0 {
				return fmt.Sprintf("%s %d", sel.Title, year)
			}
			return sel.Title
		case "tv":
			if season > 0 && episode > 0 {
				return fmt.Sprintf("%s s%02de%02d", sel.Title, season, episode)
			}
			if season > 0 {
				return fmt.Sprintf("%s s%02d", sel.Title, season)
			}
			return sel.Title
		}
	}
	return raw
}
