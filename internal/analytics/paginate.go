package analytics

// PaginationMeta describes one page of a listing.
type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Paginate derives the page count for a listing. TotalPages is at least 1
// even for an empty result set, so callers never see a zero-page listing.
// Page and limit bounds are the caller's responsibility; they are passed
// through unchanged.
func Paginate(totalItems, page, limit int) PaginationMeta {
	totalPages := 1
	if limit > 0 {
		if n := (totalItems + limit - 1) / limit; n > 1 {
			totalPages = n
		}
	}
	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
