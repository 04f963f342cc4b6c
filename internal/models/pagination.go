package models

// Pagination describes one page of a limit/offset listing.
type Pagination struct {
	Total      int  `json:"total"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"hasMore"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
}

// NewPagination derives page numbers from a limit/offset window. Page is
// 1-based; an empty result still reports page 1 of 0.
func NewPagination(total, limit, offset int) Pagination {
	p := Pagination{Total: total, Limit: limit, Offset: offset, Page: 1}
	if limit > 0 {
		p.Page = offset/limit + 1
		p.TotalPages = (total + limit - 1) / limit
	}
	p.HasMore = offset+limit < total
	return p
}
