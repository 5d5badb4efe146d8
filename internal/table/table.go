package table

import (
	"fmt"
	"sort"
	"strings"
)

// Column describes one sortable, searchable column of a table. Value
// extracts the cell value from a row; strings sort case-insensitively,
// numeric values sort natively.
type Column[T any] struct {
	Name  string
	Value func(T) interface{}
}

// RenderedRow is the displayed representation of one row, produced by a
// row-render strategy. Cells are keyed by column name.
type RenderedRow struct {
	Cells map[string]string `json:"cells"`
	Badge string            `json:"badge,omitempty"`
}

// RenderFunc turns one row into its displayed representation. The table
// is otherwise oblivious to the row shape.
type RenderFunc[T any] func(T) RenderedRow

// Table applies the view transforms filter -> search -> sort -> paginate
// to an ordered sequence of homogeneous rows. The source rows are treated
// as read-only; every view is derived.
type Table[T any] struct {
	rows     []T
	columns  []Column[T]
	render   RenderFunc[T]
	pageSize int

	filter   func(T) bool
	search   string
	sortCol  string
	sortDesc bool
	page     int
}

// New creates a table over rows with the given columns and render
// strategy. pageSize values below 1 fall back to 10.
func New[T any](rows []T, columns []Column[T], render RenderFunc[T], pageSize int) *Table[T] {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Table[T]{
		rows:     rows,
		columns:  columns,
		render:   render,
		pageSize: pageSize,
		page:     1,
	}
}

// SetRows replaces the underlying row set wholesale and resets to page 1.
func (t *Table[T]) SetRows(rows []T) {
	t.rows = rows
	t.page = 1
}

// SetFilter installs an arbitrary row predicate and resets to page 1.
// A nil predicate clears the filter.
func (t *Table[T]) SetFilter(filter func(T) bool) {
	t.filter = filter
	t.page = 1
}

// SetSearch installs a case-insensitive substring search across the
// string form of every column and resets to page 1.
func (t *Table[T]) SetSearch(query string) {
	t.search = strings.ToLower(strings.TrimSpace(query))
	t.page = 1
}

// SortBy sorts by the named column, toggling direction on repeated calls
// for the same column. Switching to a new column always resets to
// ascending. An unknown column name is ignored.
func (t *Table[T]) SortBy(column string) {
	if t.columnIndex(column) < 0 {
		return
	}
	if t.sortCol == column {
		t.sortDesc = !t.sortDesc
	} else {
		t.sortCol = column
		t.sortDesc = false
	}
}

// Sort sets the sort column and direction explicitly, for stateless
// callers that carry direction themselves. Unknown columns are ignored.
func (t *Table[T]) Sort(column string, desc bool) {
	if t.columnIndex(column) < 0 {
		return
	}
	t.sortCol = column
	t.sortDesc = desc
}

// SetPage moves to the 1-indexed page. Out-of-range values are clamped
// against the current result length rather than trusted.
func (t *Table[T]) SetPage(page int) {
	t.page = page
}

// Page returns the current page number after clamping.
func (t *Table[T]) Page() int {
	total := t.totalPages(len(t.All()))
	return clampPage(t.page, total)
}

// PageSize returns the fixed page size.
func (t *Table[T]) PageSize() int {
	return t.pageSize
}

// All returns the full filtered, searched, sorted row set. Chart and
// export collaborators consume this read-only.
func (t *Table[T]) All() []T {
	result := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if t.filter != nil && !t.filter(row) {
			continue
		}
		if t.search != "" && !t.matchesSearch(row) {
			continue
		}
		result = append(result, row)
	}

	if idx := t.columnIndex(t.sortCol); idx >= 0 {
		value := t.columns[idx].Value
		sort.SliceStable(result, func(i, j int) bool {
			less := compareValues(value(result[i]), value(result[j]))
			if t.sortDesc {
				return less > 0
			}
			return less < 0
		})
	}

	return result
}

// View returns the rows of the current page.
func (t *Table[T]) View() []T {
	all := t.All()
	total := t.totalPages(len(all))
	page := clampPage(t.page, total)

	start := (page - 1) * t.pageSize
	if start >= len(all) {
		return nil
	}
	end := start + t.pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// RenderPage renders the current page through the row-render strategy.
func (t *Table[T]) RenderPage() []RenderedRow {
	view := t.View()
	rendered := make([]RenderedRow, 0, len(view))
	for _, row := range view {
		rendered = append(rendered, t.render(row))
	}
	return rendered
}

// RenderN renders up to max rows of the full result set through the
// row-render strategy; max below 1 renders everything.
func (t *Table[T]) RenderN(max int) []RenderedRow {
	all := t.All()
	if max >= 1 && len(all) > max {
		all = all[:max]
	}
	rendered := make([]RenderedRow, 0, len(all))
	for _, row := range all {
		rendered = append(rendered, t.render(row))
	}
	return rendered
}

// StatusLine returns the "X-Y of N" status line; an empty result set
// renders as "0 of 0" rather than an error.
func (t *Table[T]) StatusLine() string {
	all := t.All()
	if len(all) == 0 {
		return "0 of 0"
	}
	total := t.totalPages(len(all))
	page := clampPage(t.page, total)
	start := (page-1)*t.pageSize + 1
	end := page * t.pageSize
	if end > len(all) {
		end = len(all)
	}
	return fmt.Sprintf("%d-%d of %d", start, end, len(all))
}

func (t *Table[T]) matchesSearch(row T) bool {
	for _, col := range t.columns {
		text := strings.ToLower(fmt.Sprint(col.Value(row)))
		if strings.Contains(text, t.search) {
			return true
		}
	}
	return false
}

func (t *Table[T]) columnIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, col := range t.columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table[T]) totalPages(rows int) int {
	if rows == 0 {
		return 1
	}
	return (rows + t.pageSize - 1) / t.pageSize
}

func clampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// compareValues orders two cell values: strings case-insensitively,
// numbers natively, everything else by string form. Returns -1, 0 or 1.
func compareValues(a, b interface{}) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	as := strings.ToLower(fmt.Sprint(a))
	bs := strings.ToLower(fmt.Sprint(b))
	return strings.Compare(as, bs)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
