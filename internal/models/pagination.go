package models

import "strconv"

const (
	// InvoicesPerPage is the default page size of the invoice listing
	InvoicesPerPage = 6

	// MaxPageSize caps any configured page size
	MaxPageSize = 100
)

// PaginationResult holds pagination metadata
type PaginationResult struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationResult creates a pagination result
func NewPaginationResult(page, pageSize int, totalCount int64) PaginationResult {
	return PaginationResult{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: TotalPages(totalCount, pageSize),
	}
}

// TotalPages returns ceil(totalCount / pageSize), and 0 for an empty result
func TotalPages(totalCount int64, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((totalCount + size - 1) / size)
}

// ParsePage reads a 1-based page number. Absent, non-numeric and
// non-positive values yield 1. There is no upper bound.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ValidateAndSetDefaults validates pagination parameters and sets defaults
func ValidateAndSetDefaults(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 {
		*pageSize = InvoicesPerPage
	}
	if *pageSize > MaxPageSize {
		*pageSize = MaxPageSize
	}
}

// CalculateOffset calculates the SQL offset for pagination
func CalculateOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// PageItems lists the page numbers a pagination control shows for
// currentPage out of totalPages. A zero marks an ellipsis. Up to seven
// pages are listed in full; beyond that the first and last pages stay
// visible around a window near the current page.
func PageItems(currentPage, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}

	if totalPages <= 7 {
		items := make([]int, totalPages)
		for i := range items {
			items[i] = i + 1
		}
		return items
	}

	switch {
	case currentPage <= 3:
		return []int{1, 2, 3, 0, totalPages - 1, totalPages}
	case currentPage >= totalPages-2:
		return []int{1, 2, 0, totalPages - 2, totalPages - 1, totalPages}
	default:
		return []int{1, 0, currentPage - 1, currentPage, currentPage + 1, 0, totalPages}
	}
}
