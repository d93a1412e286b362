// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the number of class entries shown per page in the list
// manager. Pages are 1-indexed.
const PageSize = 25

// TotalPages returns max(1, ceil(n/PageSize)).
func TotalPages(n int) int {
	return totalPagesWithSize(n, PageSize)
}

func totalPagesWithSize(n, pageSize int) int {
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Clamp returns page forced into [1, TotalPages(n)].
func Clamp(page, n int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(n); page > last {
		return last
	}
	return page
}

// Bounds returns the half-open [start, end) slice indices of page in a
// list of n items. page is clamped first, so the result is always valid
// for slicing.
func Bounds(page, n int) (start, end int) {
	page = Clamp(page, n)
	start = (page - 1) * PageSize
	if start > n {
		start = n
	}
	end = start + PageSize
	if end > n {
		end = n
	}
	return start, end
}

// ParsePage extracts the human-friendly "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start    int // 1-based index of the first row shown (0 if none)
	End      int // 1-based index of the last row shown (0 if none)
	Total    int
	Page     int
	Pages    int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// ComputeRange calculates the pager values for page in a list of n items.
func ComputeRange(page, n int) Range {
	page = Clamp(page, n)
	pages := TotalPages(n)
	start, end := Bounds(page, n)

	r := Range{
		Total:    n,
		Page:     page,
		Pages:    pages,
		HasPrev:  page > 1,
		HasNext:  page < pages,
		PrevPage: page - 1,
		NextPage: page + 1,
	}
	if r.PrevPage < 1 {
		r.PrevPage = 1
	}
	if r.NextPage > pages {
		r.NextPage = pages
	}
	if end > start {
		r.Start = start + 1
		r.End = end
	}
	return r
}
