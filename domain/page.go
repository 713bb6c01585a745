package domain

// PageSize is the fixed number of posts per listing page.
const PageSize = 10

// Page is one fixed-size slice of an ordered post listing, identified
// by a 1-based page number. Out-of-range numbers never occur in a Page,
// NewPage clamps them to the nearest valid page instead.
type Page struct {
	Items      []Post `json:"items"`
	Number     int    `json:"number"`
	Size       int    `json:"size"`
	TotalItems int64  `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}

// NewPage returns a Page positioned at the requested number, clamped
// into the valid range for the given total. An empty result set still
// has one (empty) page, so a Number of 1 is always valid.
func NewPage(number int, totalItems int64) *Page {
	totalPages := int((totalItems + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return &Page{
		Number:     number,
		Size:       PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Offset returns the number of items preceding this page.
func (p *Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// HasNext reports whether a page follows this one.
func (p *Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev reports whether a page precedes this one.
func (p *Page) HasPrev() bool {
	return p.Number > 1
}
