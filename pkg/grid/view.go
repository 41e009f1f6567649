package grid

import "fmt"

// View is an immutable snapshot of what the table shows right now: the
// current page of rows, pagination facts and the range label, selection and
// any delete awaiting confirmation.
type View struct {
	Columns []Column
	Rows    []Row

	Loading      bool
	Empty        bool
	EmptyMessage string

	Page       int
	PageSize   int
	Total      int
	TotalPages int
	RangeLabel string

	Searchable bool
	Selectable bool
	Selected   []string

	PendingDelete string
}

// View computes the current snapshot. In local mode it filters, sorts and
// paginates the held rows; in server mode it returns the fetched page as-is
// with the server-reported totals.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	vis := e.sortedLocked(e.visibleLocked())
	total := len(vis)
	if e.opts.ServerMode {
		total = e.total
	}
	size := e.state.PageSize
	pages := 0
	if total > 0 {
		pages = (total + size - 1) / size
	}
	page := clampPage(e.state.Page, total, size)

	var rows []Row
	if e.opts.ServerMode {
		rows = append([]Row(nil), e.rows...)
	} else {
		start := page * size
		end := start + size
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		rows = append([]Row(nil), vis[start:end]...)
	}

	v := View{
		Columns:       append([]Column(nil), e.cols...),
		Rows:          rows,
		Loading:       e.opts.Loading,
		Page:          page,
		PageSize:      size,
		Total:         total,
		TotalPages:    pages,
		RangeLabel:    rangeLabel(page, size, total, len(rows)),
		Searchable:    e.opts.Searchable,
		Selectable:    e.opts.Selectable,
		Selected:      e.selectionLocked(),
		PendingDelete: e.pendingDelete,
	}
	if !v.Loading && total == 0 {
		v.Empty = true
		v.EmptyMessage = EmptyMessage
	}
	return v
}

// Cell formats the value of field for row r using the view's column
// definition; unknown fields render empty.
func (v View) Cell(r Row, field string) string {
	for _, col := range v.Columns {
		if col.Field == field {
			return col.Cell(r)
		}
	}
	return ""
}

// rangeLabel renders "1–10 of 25" for the current page.
func rangeLabel(page, size, total, onPage int) string {
	if total <= 0 {
		return "0 of 0"
	}
	start := page*size + 1
	end := page*size + onPage
	if end < start {
		end = start
	}
	return fmt.Sprintf("%d–%d of %d", start, end, total)
}
