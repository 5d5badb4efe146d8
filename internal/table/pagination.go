package table

// maxPageButtons caps the numbered pagination window.
const maxPageButtons = 5

// Pagination describes the pagination controls for the current view: a
// capped window of numbered buttons centered on the current page, with
// first/last shortcuts and ellipses when the window does not reach the
// boundary. Previous/next are disabled at the edges.
type Pagination struct {
	Page             int   `json:"page"`
	TotalPages       int   `json:"total_pages"`
	TotalRows        int   `json:"total_rows"`
	Window           []int `json:"window"`
	ShowFirst        bool  `json:"show_first"`
	ShowLast         bool  `json:"show_last"`
	LeadingEllipsis  bool  `json:"leading_ellipsis"`
	TrailingEllipsis bool  `json:"trailing_ellipsis"`
	HasPrev          bool  `json:"has_prev"`
	HasNext          bool  `json:"has_next"`
}

// Pagination computes the control layout for the current page.
func (t *Table[T]) Pagination() Pagination {
	rows := len(t.All())
	total := t.totalPages(rows)
	page := clampPage(t.page, total)

	start := page - maxPageButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxPageButtons - 1
	if end > total {
		end = total
		start = end - maxPageButtons + 1
		if start < 1 {
			start = 1
		}
	}

	window := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}

	return Pagination{
		Page:             page,
		TotalPages:       total,
		TotalRows:        rows,
		Window:           window,
		ShowFirst:        start > 1,
		ShowLast:         end < total,
		LeadingEllipsis:  start > 2,
		TrailingEllipsis: end < total-1,
		HasPrev:          page > 1,
		HasNext:          page < total,
	}
}
