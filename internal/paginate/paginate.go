// Package paginate holds 1-based page/limit state and computes the
// compressed page-number window shown by pager controls.
package paginate

import "strconv"

// Ellipsis marks skipped pages in a PageNumbers window.
const Ellipsis = -1

// maxVisiblePages is the window size before compression kicks in.
const maxVisiblePages = 5

// Cursor tracks the current page and page size for one list.
type Cursor struct {
	page  int
	limit int
}

// NewCursor starts at the given page and limit, defaulting to page 1 and
// limit 10 for non-positive values.
func NewCursor(page, limit int) *Cursor {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return &Cursor{page: page, limit: limit}
}

// Page returns the current 1-based page.
func (c *Cursor) Page() int { return c.page }

// Limit returns the current page size.
func (c *Cursor) Limit() int { return c.limit }

// SetPage moves to the given page, clamping below at 1.
func (c *Cursor) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.page = page
}

// SetLimit changes the page size and resets to page 1 so the cursor never
// points past the new last page.
func (c *Cursor) SetLimit(limit int) {
	if limit < 1 {
		limit = 10
	}
	c.limit = limit
	c.page = 1
}

// Params returns the query values a paged list endpoint expects.
func (c *Cursor) Params() map[string]string {
	return map[string]string{
		"page":  strconv.Itoa(c.page),
		"limit": strconv.Itoa(c.limit),
	}
}

// PageNumbers computes the pager window for the cursor's current page.
func (c *Cursor) PageNumbers(totalPages int) []int {
	return PageNumbers(c.page, totalPages)
}

// PageNumbers returns the page numbers a pager should show. Up to five pages
// are listed verbatim; beyond that the window always contains page 1 and the
// last page, with Ellipsis where pages are skipped and up to three pages
// around current. Pure function of (current, totalPages).
func PageNumbers(current, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	if totalPages <= maxVisiblePages {
		pages := make([]int, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	var pages []int
	switch {
	case current <= 3:
		for i := 1; i <= 4; i++ {
			pages = append(pages, i)
		}
		pages = append(pages, Ellipsis, totalPages)
	case current >= totalPages-2:
		pages = append(pages, 1, Ellipsis)
		for i := totalPages - 3; i <= totalPages; i++ {
			pages = append(pages, i)
		}
	default:
		pages = append(pages, 1, Ellipsis)
		for i := current - 1; i <= current+1; i++ {
			pages = append(pages, i)
		}
		pages = append(pages, Ellipsis, totalPages)
	}
	return pages
}
