package tele

import (
	"encoding/json"
	"strconv"
)

// Request is the body sent to the tele search endpoint.
type Request struct {
	Size      int            `json:"size"`
	From      int            `json:"from"`
	Explain   bool           `json:"explain"`
	Highlight map[string]any `json:"highlight"`
	Query     MatchQuery     `json:"query"`
	Fields    []string       `json:"fields"`
}

// MatchQuery is the free-text match clause of a search request.
type MatchQuery struct {
	Boost float64 `json:"boost"`
	Match string  `json:"match"`
}

// Result is one matched record mapped from a backend hit.
type Result struct {
	ID        string              `json:"id"`
	Score     float64             `json:"score"`
	Source    Fields              `json:"source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// Fields is the per-hit field bag, decoded into an explicit
// optional-field record. The index has gone through two field-name
// schemas; both are recognized here so older documents keep their
// download links (ChatId/ID vs chat_id/id, and the matching
// casings for Tokens, File and Size).
type Fields struct {
	Tokens string `json:"tokens,omitempty"`
	File   string `json:"file,omitempty"`
	Size   *int64 `json:"size,omitempty"`
	ChatID string `json:"chatId,omitempty"`
	FileID string `json:"fileId,omitempty"`
}

// UnmarshalJSON decodes the open field bag, accepting both the current
// and the legacy key schema. Values that arrive as JSON numbers or
// strings are both accepted; anything unrecognized is dropped.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var bag map[string]json.RawMessage
	if err := json.Unmarshal(data, &bag); err != nil {
		return err
	}

	f.Tokens = pickString(bag, "Tokens", "tokens")
	f.File = pickString(bag, "File", "file")
	f.ChatID = pickIdentifier(bag, "ChatId", "chat_id")
	f.FileID = pickIdentifier(bag, "ID", "id")
	if size, ok := pickInt(bag, "Size", "size"); ok {
		f.Size = &size
	}

	return nil
}

func pickString(bag map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := bag[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}

// pickIdentifier reads an id that may be stored as a number or a string.
func pickIdentifier(bag map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := bag[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var n int64
		if err := json.Unmarshal(raw, &n); err == nil {
			return strconv.FormatInt(n, 10)
		}
	}
	return ""
}

func pickInt(bag map[string]json.RawMessage, keys ...string) (int64, bool) {
	for _, key := range keys {
		raw, ok := bag[key]
		if !ok {
			continue
		}
		var n int64
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// hit is the raw per-hit shape returned by the backend.
type hit struct {
	ID        string              `json:"id"`
	Score     float64             `json:"score"`
	Fields    Fields              `json:"fields"`
	Fragments map[string][]string `json:"fragments"`
}
