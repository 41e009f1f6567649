// Package grid is a headless data-table engine: it takes a semantic
// column/row description and produces sort, filter, paginate and selection
// behavior, independent of where the data comes from (a client-held slice or
// a server-paginated feed). Hosts subscribe to its callbacks and render the
// View snapshots however they like.
package grid

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/parlaygames/pitboss/pkg/grid/query"
)

// EmptyMessage is rendered when a non-loading table has no rows.
const EmptyMessage = "no data available"

// Options configures an Engine instance.
type Options struct {
	// Loading shows a busy indicator instead of rows.
	Loading bool
	// PageSize is rows per page; defaults to 20.
	PageSize int
	// Searchable enables the free-text filter control.
	Searchable bool
	// Selectable enables per-row checkboxes and selection callbacks.
	Selectable bool
	// ServerMode disables local sort/filter/paginate; interactions emit
	// query-state-changed events for an external fetch instead.
	ServerMode bool
	// ResetSelectionOnPageChange clears the selection set when the page
	// changes. Off by default: the selection survives pagination.
	ResetSelectionOnPageChange bool
}

// Engine holds table state for one view. All methods are safe for the
// single-goroutine event-loop callers this targets; the mutex makes them
// safe from any goroutine.
type Engine struct {
	mu   sync.Mutex
	cols []Column
	rows []Row // original order; in server mode, the current page as fetched
	opts Options

	state query.State
	total int // server-reported total in server mode

	selection     map[string]struct{}
	pendingDelete string

	onQuery     func(query.State)
	onSelection func([]string)
	onDelete    func(id string)
}

// New configures an engine. Duplicate column fields or row ids are
// configuration errors.
func New(cols []Column, rows []Row, opts Options) (*Engine, error) {
	if err := validateColumns(cols); err != nil {
		return nil, err
	}
	if err := validateRows(rows); err != nil {
		return nil, err
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	e := &Engine{
		cols:      append([]Column(nil), cols...),
		rows:      append([]Row(nil), rows...),
		opts:      opts,
		state:     query.NewState(opts.PageSize),
		selection: map[string]struct{}{},
	}
	return e, nil
}

// OnQueryChange registers the server-mode fetch trigger. Every sort, search,
// page or page-size interaction in server mode emits the full new state.
func (e *Engine) OnQueryChange(fn func(query.State)) { e.mu.Lock(); e.onQuery = fn; e.mu.Unlock() }

// OnSelectionChange registers the selection listener. It always receives the
// complete new selection set, never a delta.
func (e *Engine) OnSelectionChange(fn func([]string)) { e.mu.Lock(); e.onSelection = fn; e.mu.Unlock() }

// OnDelete registers the destructive callback. It only ever fires through
// RequestDelete followed by ConfirmDelete.
func (e *Engine) OnDelete(fn func(id string)) { e.mu.Lock(); e.onDelete = fn; e.mu.Unlock() }

// SetLoading toggles the busy indicator.
func (e *Engine) SetLoading(loading bool) {
	e.mu.Lock()
	e.opts.Loading = loading
	e.mu.Unlock()
}

// SetRows replaces the local dataset, keeping query state. Selected ids that
// disappeared stay selected; the host owns the selection set and decides
// when it goes stale.
func (e *Engine) SetRows(rows []Row) error {
	if err := validateRows(rows); err != nil {
		return err
	}
	e.mu.Lock()
	e.rows = append([]Row(nil), rows...)
	e.mu.Unlock()
	return nil
}

// SetServerPage feeds one fetched page plus the server-reported total.
// Only meaningful in server mode.
func (e *Engine) SetServerPage(rows []Row, total int) error {
	if err := validateRows(rows); err != nil {
		return err
	}
	e.mu.Lock()
	e.rows = append([]Row(nil), rows...)
	if total < 0 {
		total = 0
	}
	e.total = total
	e.opts.Loading = false
	e.mu.Unlock()
	return nil
}

// Sort cycles the named field through ascending, descending and unsorted.
// Sorting a different field starts its cycle at ascending. After the third
// invocation on the same field the table is back in original order.
func (e *Engine) Sort(field string) {
	field = strings.TrimSpace(field)
	if field == "" {
		return
	}
	e.mu.Lock()
	if e.state.SortField != field {
		e.state.SortField = field
		e.state.SortDir = query.Ascending
	} else {
		switch e.state.SortDir {
		case query.Ascending:
			e.state.SortDir = query.Descending
		case query.Descending:
			e.state.SortField = ""
			e.state.SortDir = query.Unsorted
		default:
			e.state.SortDir = query.Ascending
		}
	}
	e.emitQueryLocked()
}

// SetSearch updates the free-text filter and returns to the first page. In
// local mode the visible set is recomputed on the next View; in server mode
// the new state is emitted upward without filtering anything locally.
func (e *Engine) SetSearch(text string) {
	e.mu.Lock()
	e.state.Search = text
	e.state.Page = 0
	e.emitQueryLocked()
}

// SetFilter replaces the structured filter predicates and returns to the
// first page.
func (e *Engine) SetFilter(preds []query.Predicate) {
	e.mu.Lock()
	e.state.Filters = append([]query.Predicate(nil), preds...)
	e.state.Page = 0
	e.emitQueryLocked()
}

// SetPage moves to a page, clamped to [0, ceil(total/size)-1].
func (e *Engine) SetPage(page int) {
	e.mu.Lock()
	e.state.Page = clampPage(page, e.totalRowsLocked(), e.state.PageSize)
	var resetFn func([]string)
	var resetSet []string
	if e.opts.ResetSelectionOnPageChange && len(e.selection) > 0 {
		e.selection = map[string]struct{}{}
		resetFn, resetSet = e.onSelection, []string{}
	}
	e.emitQueryLocked()
	if resetFn != nil {
		resetFn(resetSet)
	}
}

// SetPageSize changes rows per page and re-clamps the current page.
func (e *Engine) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	e.mu.Lock()
	e.state.PageSize = size
	e.state.Page = clampPage(e.state.Page, e.totalRowsLocked(), size)
	e.emitQueryLocked()
}

// emitQueryLocked releases the lock and, in server mode, notifies the fetch
// trigger with a copy of the state. Callers must hold e.mu.
func (e *Engine) emitQueryLocked() {
	fn := e.onQuery
	st := e.state
	server := e.opts.ServerMode
	e.mu.Unlock()
	if server && fn != nil {
		fn(st)
	}
}

// Query returns a copy of the current query state.
func (e *Engine) Query() query.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func clampPage(page, total, size int) int {
	if page < 0 {
		return 0
	}
	if size <= 0 {
		return 0
	}
	last := (total + size - 1) / size
	if last > 0 {
		last--
	}
	if page > last {
		return last
	}
	return page
}

func (e *Engine) totalRowsLocked() int {
	if e.opts.ServerMode {
		return e.total
	}
	return len(e.visibleLocked())
}

// visibleLocked applies the free-text filter in local mode.
func (e *Engine) visibleLocked() []Row {
	if e.opts.ServerMode {
		return e.rows
	}
	q := strings.TrimSpace(e.state.Search)
	if q == "" {
		return e.rows
	}
	out := make([]Row, 0, len(e.rows))
	for _, r := range e.rows {
		if r.matches(q) {
			out = append(out, r)
		}
	}
	return out
}

// sortedLocked orders a copy of vis by the active sort column, stable by
// original row order on ties.
func (e *Engine) sortedLocked(vis []Row) []Row {
	if e.opts.ServerMode || e.state.SortField == "" || e.state.SortDir == query.Unsorted {
		return vis
	}
	var col *Column
	for i := range e.cols {
		if e.cols[i].Field == e.state.SortField {
			col = &e.cols[i]
			break
		}
	}
	if col == nil {
		return vis
	}
	out := append([]Row(nil), vis...)
	desc := e.state.SortDir == query.Descending
	cmp := compareValues
	if col.Less != nil {
		cmp = col.Less
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Fields[col.Field], out[j].Fields[col.Field]
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}

// compareValues is the generic ordering used when a column has no custom
// comparator: numbers numerically, strings case-insensitively, everything
// else by formatted text.
func compareValues(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.ToLower(as) < strings.ToLower(bs)
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
