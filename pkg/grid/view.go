package grid

import (
	"sort"
	"strconv"
	"strings"
)

// View applies client-side search, sort, pagination and selection over a
// loaded table. It never re-queries the server.
type View struct {
	table    *Table
	filtered []Row
	selected string
}

func NewView(t *Table) *View {
	v := &View{table: t}
	v.filtered = t.Rows
	return v
}

// SetFilter narrows the loaded rows with a case-insensitive quick filter
// across visible columns. An empty query restores the full set.
func (v *View) SetFilter(q string) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		v.filtered = v.table.Rows
		return
	}
	var out []Row
	for _, r := range v.table.Rows {
		for _, c := range v.table.Columns {
			if !c.Visible || c.Field == ActionsColumn {
				continue
			}
			if strings.Contains(strings.ToLower(Cell(r, c.Field)), q) {
				out = append(out, r)
				break
			}
		}
	}
	v.filtered = out
}

// SortBy orders the current row set by field. Numeric cells compare as
// numbers, everything else lexically.
func (v *View) SortBy(field string, asc bool) {
	rows := make([]Row, len(v.filtered))
	copy(rows, v.filtered)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := Cell(rows[i], field), Cell(rows[j], field)
		if !asc {
			a, b = b, a
		}
		na, errA := strconv.ParseFloat(a, 64)
		nb, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return na < nb
		}
		return a < b
	})
	v.filtered = rows
}

// Page returns the given zero-based page of the filtered rows. Negative
// pages clamp to the first page.
func (v *View) Page(page, size int) []Row {
	if size <= 0 {
		return v.filtered
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= len(v.filtered) {
		return nil
	}
	end := start + size
	if end > len(v.filtered) {
		end = len(v.filtered)
	}
	return v.filtered[start:end]
}

// Len reports the filtered row count.
func (v *View) Len() int { return len(v.filtered) }

// Select marks a single row by primary key value.
func (v *View) Select(id string) {
	v.selected = id
}

// Selected returns the currently selected row.
func (v *View) Selected() (Row, bool) {
	return v.rowByID(v.selected)
}

// OpenEdit resolves the double-click target: it selects the row and returns
// it for the edit form.
func (v *View) OpenEdit(id string) (Row, bool) {
	v.selected = id
	return v.rowByID(id)
}

func (v *View) rowByID(id string) (Row, bool) {
	if id == "" {
		return nil, false
	}
	for _, r := range v.table.Rows {
		if Cell(r, v.table.PrimaryKey) == id {
			return r, true
		}
	}
	return nil, false
}
