// Package stream classifies media URLs for inline playback.
package stream

import (
	"path"
	"strings"
)

// Kind is the playback element a URL should be wired to.
type Kind string

const (
	KindVideo   Kind = "video"
	KindAudio   Kind = "audio"
	KindUnknown Kind = "unknown"
)

// Video extensions are checked before audio ones, so the ambiguous
// ".ogg" always classifies as video. Keep that precedence.
var (
	videoExtensions = []string{".mp4", ".webm", ".ogg"}
	audioExtensions = []string{".mp3", ".wav", ".ogg"}
)

// Classify guesses the media kind from the URL's trailing file
// extension, case-insensitively.
func Classify(url string) Kind {
	ext := strings.ToLower(path.Ext(url))
	if ext == "" {
		return KindUnknown
	}
	for _, v := range videoExtensions {
		if ext == v {
			return KindVideo
		}
	}
	for _, a := range audioExtensions {
		if ext == a {
			return KindAudio
		}
	}
	return KindUnknown
}

// View describes what the stream page must render for a given URL.
type View struct {
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
	// Player is the element to render. An unknown kind still gets a
	// video player as a best effort, alongside the raw link fallback.
	Player Kind `json:"player"`
	// Missing is set when no URL was provided; nothing is playable.
	Missing bool `json:"missing"`
}

// BuildView derives the playback view for an opaque media URL.
func BuildView(url string) View {
	if url == "" {
		return View{Missing: true}
	}
	kind := Classify(url)
	player := kind
	if player != KindAudio {
		player = KindVideo
	}
	return View{URL: url, Kind: kind, Player: player}
}
