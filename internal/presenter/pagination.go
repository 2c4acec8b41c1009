package presenter

// Direction of a page navigation request
type Direction string

const (
	Next Direction = "next"
	Prev Direction = "prev"
)

// Pagination is the pager state derived from a fetched page
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Paginate computes the pager for page (1-based) of size pageSize out of
// total results.
func Paginate(page, pageSize, total int) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPages = (total + pageSize - 1) / pageSize
	}
	p.HasPrev = page > 1
	p.HasNext = pageSize > 0 && page*pageSize < total
	return p
}

// Request returns the page to navigate to in direction d. ok is false
// when the corresponding button is disabled; callers must drop the
// request rather than clamp it.
func (p Pagination) Request(d Direction) (page int, ok bool) {
	switch d {
	case Next:
		if p.HasNext {
			return p.Page + 1, true
		}
	case Prev:
		if p.HasPrev {
			return p.Page - 1, true
		}
	}
	return 0, false
}

// Allows reports whether jumping straight to page is within range
func (p Pagination) Allows(page int) bool {
	if page < 1 {
		return false
	}
	if page == 1 || page <= p.TotalPages {
		return true
	}
	return false
}
