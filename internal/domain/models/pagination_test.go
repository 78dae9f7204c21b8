package models

import (
	"testing"

	"github.com/Temutjin2k/niva/pkg/validator"
	"github.com/stretchr/testify/assert"
)

func TestFilters_Sort(t *testing.T) {
	tests := []struct {
		name      string
		filters   Filters
		column    string
		direction string
	}{
		{"default", EventFilters(1, 20, ""), "created_at", "ASC"},
		{"descending", EventFilters(1, 20, "-id"), "id", "DESC"},
		{"unknown key", EventFilters(1, 20, "-name"), "created_at", "ASC"},
		{"no safelist", Filters{Page: 1, PageSize: 20, Sort: "-created_at"}, "id", "ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.column, tt.filters.SortColumn())
			assert.Equal(t, tt.direction, tt.filters.SortDirection())
		})
	}
}

func TestFilters_Validate(t *testing.T) {
	v := validator.New()
	EventFilters(2, 50, "-created_at").Validate(v)
	assert.True(t, v.Valid())

	v = validator.New()
	EventFilters(0, 1000, "name").Validate(v)
	assert.Contains(t, v.Errors, "page")
	assert.Contains(t, v.Errors, "page_size")
	assert.Contains(t, v.Errors, "sort")
}

func TestFilters_LimitOffset(t *testing.T) {
	f := EventFilters(3, 20, "")
	assert.Equal(t, 20, f.Limit())
	assert.Equal(t, 40, f.Offset())

	unchecked := Filters{Page: 0, PageSize: 0}
	assert.Equal(t, 1, unchecked.Limit())
	assert.Equal(t, 0, unchecked.Offset())
}

func TestCalculateMetadata(t *testing.T) {
	assert.Equal(t, Metadata{CurrentPage: 1, PageSize: 5, FirstPage: 1, LastPage: 3, TotalRecords: 12}, CalculateMetadata(12, 1, 5))
	assert.Equal(t, Metadata{CurrentPage: 1, PageSize: 5}, CalculateMetadata(0, 1, 5))
}
