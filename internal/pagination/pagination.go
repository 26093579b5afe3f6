// Package pagination normalizes page/limit parameters and computes page counts.
package pagination

import "strings"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params is a 1-indexed page request.
type Params struct {
	Page     int
	PageSize int
}

// Normalize fills in defaults for missing or non-positive values and caps the page size.
func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

// Offset is the number of items preceding the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// NormalizeSearch trims the search term; an empty result means no filter.
func NormalizeSearch(term string) string {
	return strings.TrimSpace(term)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE/ILIKE pattern matching term as a literal substring.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
