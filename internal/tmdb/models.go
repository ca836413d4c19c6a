package tmdb

// MediaType is the kind of titled work a suggestion refers to.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Suggestion is a candidate titled work offered for query refinement.
type Suggestion struct {
	ID         int       `json:"id"`
	MediaType  MediaType `json:"mediaType"`
	Title      string    `json:"title"`
	Year       int       `json:"year,omitempty"`
	PosterPath string    `json:"posterPath,omitempty"`
}

// multiSearchResponse is the response from the TMDB multi search.
type multiSearchResponse struct {
	Page    int           `json:"page"`
	Results []multiResult `json:"results"`
}

// multiResult is one record from the multi search. Movie and TV records
// share one shape with disjoint populated fields.
type multiResult struct {
	ID            int     `json:"id"`
	MediaType     string  `json:"media_type"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Name          string  `json:"name"`
	OriginalName  string  `json:"original_name"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	PosterPath    *string `json:"poster_path"`
}
