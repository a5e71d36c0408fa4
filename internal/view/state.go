package view

// PaginationState tracks the current page and the number of pages.
type PaginationState struct {
	current int
	total   int
}

// NewPaginationState starts on page one of one.
func NewPaginationState() PaginationState {
	return PaginationState{current: 1, total: 1}
}

// Current returns the current page index (1-based).
func (p *PaginationState) Current() int {
	return p.current
}

// Total returns the number of pages.
func (p *PaginationState) Total() int {
	return p.total
}

// RequestPage moves to page n if it is within bounds. Out of range requests
// are ignored and report false.
func (p *PaginationState) RequestPage(n int) bool {
	if n < 1 || n > p.total {
		return false
	}
	p.current = n
	return true
}

// Next moves forward one page.
func (p *PaginationState) Next() bool {
	return p.RequestPage(p.current + 1)
}

// Prev moves back one page.
func (p *PaginationState) Prev() bool {
	return p.RequestPage(p.current - 1)
}

// HasNext reports whether a following page exists.
func (p *PaginationState) HasNext() bool {
	return p.current < p.total
}

// HasPrev reports whether a preceding page exists.
func (p *PaginationState) HasPrev() bool {
	return p.current > 1
}

// SetTotalPages updates the page count, treating anything below one as one.
// If the current page falls outside the new bound it is clamped to the last
// page and SetTotalPages reports true.
func (p *PaginationState) SetTotalPages(n int) bool {
	if n < 1 {
		n = 1
	}
	p.total = n
	if p.current > n {
		p.current = n
		return true
	}
	return false
}

// reset returns to the first page.
func (p *PaginationState) reset() {
	p.current = 1
}

// SearchState holds the active query and resets pagination when it changes.
type SearchState struct {
	query string
	pages *PaginationState
}

// NewSearchState couples a search state to pages.
func NewSearchState(pages *PaginationState) SearchState {
	return SearchState{pages: pages}
}

// Query returns the active query string.
func (s *SearchState) Query() string {
	return s.query
}

// SetQuery replaces the query and moves pagination back to page one.
func (s *SearchState) SetQuery(q string) {
	s.query = q
	s.pages.reset()
}
