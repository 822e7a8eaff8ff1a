package viewmodel

import (
	"time"

	"github.com/celumarket/celumarket/app/repository"
)

// Page describes the slice of a paginated result returned to the client.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPage(p repository.Pagination, total int64) Page {
	n := p.Normalize()
	return Page{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}
}

// FormatTimePtr renders t as RFC3339 or nil.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
