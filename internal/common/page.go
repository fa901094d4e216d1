package common

import "math"

const DefaultPageSize = 10

// PageWindow is a 1-based offset pagination request.
type PageWindow struct {
	Page     int
	PageSize int
}

// NewPageWindow fills zero or negative values with page 1 and defaultSize.
// Upper bounds are the validator's concern.
func NewPageWindow(page, pageSize, defaultSize int) PageWindow {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return PageWindow{Page: page, PageSize: pageSize}
}

// Offset saturates at math.MaxInt instead of overflowing for huge pages.
func (w PageWindow) Offset() int {
	if w.Page <= 1 || w.PageSize <= 0 {
		return 0
	}
	if w.Page-1 > math.MaxInt/w.PageSize {
		return math.MaxInt
	}
	return (w.Page - 1) * w.PageSize
}

// PastEnd reports whether the window starts after the last of total rows.
// Listings answer such windows with an empty page without querying items.
func (w PageWindow) PastEnd(total int64) bool {
	if total <= 0 {
		return true
	}
	return int64(w.Page-1) >= int64(w.TotalPages(total))
}

func (w PageWindow) Limit() int {
	return w.PageSize
}

// TotalPages is ceil(total / pageSize).
func (w PageWindow) TotalPages(total int64) int {
	if w.PageSize <= 0 || total <= 0 {
		return 0
	}
	size := int64(w.PageSize)
	return int((total + size - 1) / size)
}

type Paged[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPaged never returns a nil Items slice so JSON output is always a list.
func NewPaged[T any](items []T, total int64, w PageWindow) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{
		Items:      items,
		Total:      total,
		Page:       w.Page,
		PageSize:   w.PageSize,
		TotalPages: w.TotalPages(total),
	}
}
