package models

import "time"

// Session is a named shared workspace owning one clipboard value.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionPage is one page of the session list.
type SessionPage struct {
	Items      []Session
	TotalItems int
}

// ListParams describes which page of sessions to request. Page is 1-based.
type ListParams struct {
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
}

// Offset returns the number of items preceding Page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
