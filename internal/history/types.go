package history

import "time"

// Entry is one recorded search.
type Entry struct {
	ID        int64     `json:"id"`
	Query     string    `json:"query"`
	Page      int       `json:"page"`
	HitCount  int       `json:"hitCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions controls history listing.
type ListOptions struct {
	Page     int
	PageSize int
}

// ListResponse is a paginated page of history entries.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int64    `json:"totalCount"`
	TotalPages int      `json:"totalPages"`
}
