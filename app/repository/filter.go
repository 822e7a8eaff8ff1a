package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their allowed ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// TotalPages returns the number of pages needed for total items.
func (p Pagination) TotalPages(total int64) int {
	n := p.Normalize()
	if total <= 0 {
		return 0
	}
	return int((total + int64(n.Limit) - 1) / int64(n.Limit))
}

type ListingFilter struct {
	Pagination
	ModerationStatus string
	Status           string
	Search           string
}

type ReportFilter struct {
	Pagination
	ReportType  string
	IsValidated *bool
	Status      string
	Search      string
}

type UserFilter struct {
	Pagination
	Role   string
	Status string
	Search string
}

// likePattern builds a case-insensitive substring pattern. LIKE wildcards in
// the input are escaped.
func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

// dateExpr returns a per-day bucket expression for the active dialect.
func dateExpr(db *gorm.DB, column string) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "TO_CHAR(" + column + ", 'YYYY-MM-DD')"
	}
	return "DATE_FORMAT(" + column + ", '%Y-%m-%d')"
}
