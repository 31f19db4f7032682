package query

import "mallhub/internal/shared/constants"

// PageFilter is a 1-based page request. Out of range values fall back to
// the defaults in constants.
type PageFilter struct {
	Page     int
	PageSize int
}

// Normalize returns the filter with Page and PageSize clamped to the values
// Offset and Limit use.
func (f PageFilter) Normalize() PageFilter {
	page := f.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	return PageFilter{Page: page, PageSize: f.Limit()}
}

func (f PageFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

func (f PageFilter) Limit() int {
	if f.PageSize <= 0 {
		return constants.DefaultPageSize
	}
	if f.PageSize > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return f.PageSize
}
