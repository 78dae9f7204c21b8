package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Temutjin2k/niva/pkg/validator"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	maxPage = 10_000_000
)

// EventSortSafelist holds the sort keys accepted for a session's event history.
// The first entry is the default.
var EventSortSafelist = []string{"created_at", "-created_at", "id", "-id"}

// Filters pages and sorts a list request. Sort is a safelisted key, "-" prefixed for descending order.
type Filters struct {
	Page         int
	PageSize     int
	Sort         string
	SortSafelist []string
}

// EventFilters returns filters for session event history. An empty sort selects the oldest events first.
func EventFilters(page, pageSize int, sort string) Filters {
	if sort == "" {
		sort = EventSortSafelist[0]
	}
	return Filters{
		Page:         page,
		PageSize:     pageSize,
		Sort:         sort,
		SortSafelist: EventSortSafelist,
	}
}

func (f Filters) Validate(v *validator.Validator) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= maxPage, "page", "must be a maximum of 10 million")
	v.Check(f.PageSize > 0, "page_size", "must be greater than zero")
	v.Check(f.PageSize <= MaxPageSize, "page_size", fmt.Sprintf("must be a maximum of %d", MaxPageSize))
	v.Check(validator.PermittedValue(f.Sort, f.SortSafelist...), "sort", "invalid sort value")
}

// SortColumn is the column to order by. A key outside the safelist falls back to the
// first safelisted one, and to "id" when there is no safelist.
func (f Filters) SortColumn() string {
	if slices.Contains(f.SortSafelist, f.Sort) {
		return strings.TrimPrefix(f.Sort, "-")
	}
	if len(f.SortSafelist) > 0 {
		return strings.TrimPrefix(f.SortSafelist[0], "-")
	}
	return "id"
}

// SortDirection is "DESC" for a safelisted "-" key and "ASC" otherwise.
func (f Filters) SortDirection() string {
	if slices.Contains(f.SortSafelist, f.Sort) && strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

func (f Filters) Limit() int {
	return min(max(f.PageSize, 1), MaxPageSize)
}

func (f Filters) Offset() int {
	return (max(f.Page, 1) - 1) * f.Limit()
}

// Metadata describes the page returned with a list.
type Metadata struct {
	CurrentPage  int `json:"current_page"`
	PageSize     int `json:"page_size"`
	FirstPage    int `json:"first_page"`
	LastPage     int `json:"last_page"`
	TotalRecords int `json:"total_records"`
}

// CalculateMetadata builds the page metadata. First and last page are zero for an empty result.
func CalculateMetadata(totalRecords, page, pageSize int) Metadata {
	meta := Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		TotalRecords: totalRecords,
	}
	if totalRecords == 0 || pageSize <= 0 {
		return meta
	}
	meta.FirstPage = 1
	meta.LastPage = (totalRecords + pageSize - 1) / pageSize
	return meta
}
