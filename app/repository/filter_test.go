package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name   string
		in     Pagination
		page   int
		limit  int
		offset int
	}{
		{"defaults", Pagination{}, 1, DefaultPageSize, 0},
		{"second page", Pagination{Page: 2, Limit: 20}, 2, 20, 20},
		{"limit capped", Pagination{Page: 3, Limit: 1000}, 3, MaxPageSize, 200},
		{"negative page", Pagination{Page: -4, Limit: 5}, 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.in.Normalize()
			assert.Equal(t, tt.page, n.Page)
			assert.Equal(t, tt.limit, n.Limit)
			assert.Equal(t, tt.offset, tt.in.Offset())
		})
	}
}

func TestPaginationTotalPages(t *testing.T) {
	p := Pagination{Page: 1, Limit: 10}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%iphone 12%", likePattern("  iPhone 12 "))
	assert.Equal(t, `%100\%\_a%`, likePattern("100%_A"))
}
