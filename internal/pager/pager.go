// Package pager paginates a fully fetched list client-side.
package pager

// PageSize is fixed across every listing page.
const PageSize = 10

// Pager tracks the current page over a list of known length. The page
// number always stays within [1, PageCount]; out-of-range requests are
// no-ops rather than errors.
type Pager struct {
	total int
	page  int
}

// New creates a pager positioned on page 1.
func New(total int) *Pager {
	if total < 0 {
		total = 0
	}
	return &Pager{total: total, page: 1}
}

// PageCount returns the number of pages; an empty list still has one page.
func (pager *Pager) PageCount() int {
	if pager.total == 0 {
		return 1
	}
	return (pager.total + PageSize - 1) / PageSize
}

// Page returns the current page number.
func (pager *Pager) Page() int {
	return pager.page
}

// SetPage moves to the requested page; requests outside [1, PageCount]
// leave the current page unchanged.
func (pager *Pager) SetPage(page int) {
	if page < 1 || page > pager.PageCount() {
		return
	}
	pager.page = page
}

// Next advances one page when possible.
func (pager *Pager) Next() {
	pager.SetPage(pager.page + 1)
}

// Previous moves back one page when possible.
func (pager *Pager) Previous() {
	pager.SetPage(pager.page - 1)
}

// Bounds returns the half-open [start, end) index range of the current page.
func (pager *Pager) Bounds() (int, int) {
	start := (pager.page - 1) * PageSize
	if start > pager.total {
		start = pager.total
	}
	end := start + PageSize
	if end > pager.total {
		end = pager.total
	}
	return start, end
}

// Window returns the slice of items on the requested page of the list.
func Window[T any](items []T, page int) []T {
	pager := New(len(items))
	pager.SetPage(page)
	start, end := pager.Bounds()
	return items[start:end]
}
