package table

import (
	"fmt"
	"testing"
)

type row struct {
	ID      int
	Amount  float64
	Country string
}

func testColumns() []Column[row] {
	return []Column[row]{
		{Name: "id", Value: func(r row) interface{} { return r.ID }},
		{Name: "amount", Value: func(r row) interface{} { return r.Amount }},
		{Name: "country", Value: func(r row) interface{} { return r.Country }},
	}
}

func testRender(r row) RenderedRow {
	return RenderedRow{Cells: map[string]string{
		"id":      fmt.Sprint(r.ID),
		"amount":  fmt.Sprint(r.Amount),
		"country": r.Country,
	}}
}

func newTestTable(rows []row, pageSize int) *Table[row] {
	return New(rows, testColumns(), testRender, pageSize)
}

func amountsOf(rows []row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Amount
	}
	return out
}

func TestTable_SortAscendingThenDescending(t *testing.T) {
	rows := []row{
		{ID: 1, Amount: 50},
		{ID: 2, Amount: 10},
		{ID: 3, Amount: 30},
		{ID: 4, Amount: 20},
		{ID: 5, Amount: 40},
	}
	tbl := newTestTable(rows, 10)

	tbl.SortBy("amount")
	asc := amountsOf(tbl.All())
	wantAsc := []float64{10, 20, 30, 40, 50}
	for i := range wantAsc {
		if asc[i] != wantAsc[i] {
			t.Fatalf("ascending[%d] = %v, want %v", i, asc[i], wantAsc[i])
		}
	}

	// Second click on the same column toggles descending.
	tbl.SortBy("amount")
	desc := amountsOf(tbl.All())
	for i := range wantAsc {
		if desc[i] != wantAsc[len(wantAsc)-1-i] {
			t.Fatalf("descending[%d] = %v, want %v", i, desc[i], wantAsc[len(wantAsc)-1-i])
		}
	}
}

func TestTable_SortNewColumnResetsAscending(t *testing.T) {
	rows := []row{
		{ID: 2, Amount: 10, Country: "UK"},
		{ID: 1, Amount: 50, Country: "India"},
	}
	tbl := newTestTable(rows, 10)

	tbl.SortBy("amount")
	tbl.SortBy("amount") // now descending
	tbl.SortBy("country")

	all := tbl.All()
	if all[0].Country != "India" {
		t.Errorf("first row country = %s, want India (new column sorts ascending)", all[0].Country)
	}
}

func TestTable_SortStringsCaseInsensitive(t *testing.T) {
	rows := []row{
		{ID: 1, Country: "india"},
		{ID: 2, Country: "Brazil"},
		{ID: 3, Country: "UK"},
	}
	tbl := newTestTable(rows, 10)
	tbl.SortBy("country")

	all := tbl.All()
	want := []string{"Brazil", "india", "UK"}
	for i := range want {
		if all[i].Country != want[i] {
			t.Errorf("sorted[%d] = %s, want %s", i, all[i].Country, want[i])
		}
	}
}

func TestTable_SearchCaseInsensitive(t *testing.T) {
	rows := []row{
		{ID: 1, Country: "India"},
		{ID: 2, Country: "USA"},
		{ID: 3, Country: "UK"},
	}
	tbl := newTestTable(rows, 10)

	tbl.SetSearch("india")

	all := tbl.All()
	if len(all) != 1 {
		t.Fatalf("got %d rows, want 1", len(all))
	}
	if all[0].Country != "India" {
		t.Errorf("matched country = %s, want India", all[0].Country)
	}
}

func TestTable_SearchResetsPage(t *testing.T) {
	rows := make([]row, 30)
	for i := range rows {
		rows[i] = row{ID: i, Country: "USA"}
	}
	tbl := newTestTable(rows, 10)
	tbl.SetPage(3)

	tbl.SetSearch("usa")

	if tbl.Page() != 1 {
		t.Errorf("page after search = %d, want 1", tbl.Page())
	}
}

func TestTable_FilterComposesWithSearch(t *testing.T) {
	rows := []row{
		{ID: 1, Amount: 100, Country: "India"},
		{ID: 2, Amount: 5, Country: "India"},
		{ID: 3, Amount: 200, Country: "UK"},
	}
	tbl := newTestTable(rows, 10)

	tbl.SetFilter(func(r row) bool { return r.Amount >= 50 })
	tbl.SetSearch("india")

	all := tbl.All()
	if len(all) != 1 || all[0].ID != 1 {
		t.Fatalf("got %v, want only row 1", all)
	}
}

func TestTable_PaginationCoverage(t *testing.T) {
	rows := make([]row, 23)
	for i := range rows {
		rows[i] = row{ID: i, Amount: float64(i)}
	}
	tbl := newTestTable(rows, 5)
	tbl.SortBy("amount")

	// Concatenating all pages reproduces the full sorted set exactly once.
	seen := make(map[int]int)
	var concat []row
	for page := 1; page <= tbl.Pagination().TotalPages; page++ {
		tbl.SetPage(page)
		for _, r := range tbl.View() {
			seen[r.ID]++
			concat = append(concat, r)
		}
	}

	if len(concat) != len(rows) {
		t.Fatalf("concatenated %d rows, want %d", len(concat), len(rows))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("row %d appeared %d times, want 1", id, count)
		}
	}
	for i := 1; i < len(concat); i++ {
		if concat[i].Amount < concat[i-1].Amount {
			t.Fatalf("page concatenation out of order at %d", i)
		}
	}
}

func TestTable_PageClampAfterNarrowing(t *testing.T) {
	rows := make([]row, 50)
	for i := range rows {
		country := "USA"
		if i == 0 {
			country = "India"
		}
		rows[i] = row{ID: i, Country: country}
	}
	tbl := newTestTable(rows, 10)
	tbl.SetPage(5)

	tbl.SetSearch("india")

	view := tbl.View()
	if len(view) != 1 {
		t.Fatalf("got %d rows, want 1", len(view))
	}
	if tbl.Page() != 1 {
		t.Errorf("page = %d, want clamped to 1", tbl.Page())
	}
}

func TestTable_EmptyResultSet(t *testing.T) {
	tbl := newTestTable(nil, 10)

	if got := len(tbl.View()); got != 0 {
		t.Errorf("view length = %d, want 0", got)
	}
	if got := tbl.StatusLine(); got != "0 of 0" {
		t.Errorf("status line = %q, want %q", got, "0 of 0")
	}
	if got := len(tbl.RenderPage()); got != 0 {
		t.Errorf("rendered rows = %d, want 0", got)
	}
}

func TestTable_StatusLine(t *testing.T) {
	rows := make([]row, 57)
	for i := range rows {
		rows[i] = row{ID: i}
	}
	tbl := newTestTable(rows, 10)

	if got := tbl.StatusLine(); got != "1-10 of 57" {
		t.Errorf("status line = %q, want %q", got, "1-10 of 57")
	}

	tbl.SetPage(6)
	if got := tbl.StatusLine(); got != "51-57 of 57" {
		t.Errorf("last page status line = %q, want %q", got, "51-57 of 57")
	}
}

func TestTable_PaginationWindow(t *testing.T) {
	rows := make([]row, 200)
	for i := range rows {
		rows[i] = row{ID: i}
	}
	tbl := newTestTable(rows, 10) // 20 pages

	tests := []struct {
		page       int
		wantWindow []int
		showFirst  bool
		showLast   bool
		hasPrev    bool
		hasNext    bool
	}{
		{page: 1, wantWindow: []int{1, 2, 3, 4, 5}, showLast: true, hasNext: true},
		{page: 10, wantWindow: []int{8, 9, 10, 11, 12}, showFirst: true, showLast: true, hasPrev: true, hasNext: true},
		{page: 20, wantWindow: []int{16, 17, 18, 19, 20}, showFirst: true, hasPrev: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page%d", tt.page), func(t *testing.T) {
			tbl.SetPage(tt.page)
			p := tbl.Pagination()

			if len(p.Window) != len(tt.wantWindow) {
				t.Fatalf("window = %v, want %v", p.Window, tt.wantWindow)
			}
			for i := range tt.wantWindow {
				if p.Window[i] != tt.wantWindow[i] {
					t.Errorf("window[%d] = %d, want %d", i, p.Window[i], tt.wantWindow[i])
				}
			}
			if p.ShowFirst != tt.showFirst {
				t.Errorf("ShowFirst = %v, want %v", p.ShowFirst, tt.showFirst)
			}
			if p.ShowLast != tt.showLast {
				t.Errorf("ShowLast = %v, want %v", p.ShowLast, tt.showLast)
			}
			if p.HasPrev != tt.hasPrev {
				t.Errorf("HasPrev = %v, want %v", p.HasPrev, tt.hasPrev)
			}
			if p.HasNext != tt.hasNext {
				t.Errorf("HasNext = %v, want %v", p.HasNext, tt.hasNext)
			}
		})
	}
}

func TestTable_PaginationSmallSet(t *testing.T) {
	rows := make([]row, 12)
	for i := range rows {
		rows[i] = row{ID: i}
	}
	tbl := newTestTable(rows, 10)

	p := tbl.Pagination()
	if p.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", p.TotalPages)
	}
	if len(p.Window) != 2 {
		t.Errorf("window = %v, want [1 2]", p.Window)
	}
	if p.LeadingEllipsis || p.TrailingEllipsis {
		t.Error("small set should have no ellipses")
	}
}

func TestTable_RenderPage(t *testing.T) {
	rows := []row{{ID: 1, Amount: 9.5, Country: "UK"}}
	tbl := newTestTable(rows, 10)

	rendered := tbl.RenderPage()
	if len(rendered) != 1 {
		t.Fatalf("got %d rendered rows, want 1", len(rendered))
	}
	if rendered[0].Cells["country"] != "UK" {
		t.Errorf("country cell = %q, want UK", rendered[0].Cells["country"])
	}
}
