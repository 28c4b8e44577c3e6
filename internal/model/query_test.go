package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterQueryOffset(t *testing.T) {
	tests := []struct {
		name   string
		page   int
		limit  int
		offset int
		ok     bool
	}{
		{"first page", 1, 10, 0, true},
		{"third page", 3, 4, 8, true},
		{"largest exact offset", 2, math.MaxInt, math.MaxInt, true},
		{"page overflows", 1 << 62, 4, 0, false},
		{"limit overflows", 3, 1 << 62, 0, false},
		{"huge limit on later page", 3, math.MaxInt, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, ok := CharacterQuery{Page: tt.page, Limit: tt.limit}.Offset()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		total int
		pages int
	}{
		{"exact fit", 5, 10, 2},
		{"partial last page", 4, 9, 3},
		{"empty", 10, 0, 0},
		{"limit larger than total", 10, 3, 1},
		{"max limit", math.MaxInt, 5, 1},
		{"max limit and total", math.MaxInt, math.MaxInt, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewPageInfo(CharacterQuery{Page: 1, Limit: tt.limit}, tt.total)
			assert.Equal(t, tt.pages, info.TotalPages)
			assert.Equal(t, tt.total, info.TotalItems)
			assert.Equal(t, tt.limit, info.ItemsPerPage)
		})
	}
}
