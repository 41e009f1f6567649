package grid

import (
	"reflect"
	"testing"

	"github.com/parlaygames/pitboss/pkg/grid/query"
)

func userColumns() []Column {
	return []Column{
		{Field: "name", Label: "Name", Kind: KindText, Sortable: true},
		{Field: "status", Label: "Status", Kind: KindChip},
		{Field: "score", Label: "Score", Sortable: true},
	}
}

func threeUsers() []Row {
	return []Row{
		NewRow("u1", map[string]any{"name": "John Doe", "status": "active", "score": 10}),
		NewRow("u2", map[string]any{"name": "Jane Smith", "status": "banned", "score": 30}),
		NewRow("u3", map[string]any{"name": "Bob Johnson", "status": "active", "score": 20}),
	}
}

func names(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Fields["name"].(string))
	}
	return out
}

func TestDuplicateColumnFieldRejected(t *testing.T) {
	cols := []Column{{Field: "name"}, {Field: "name"}}
	if _, err := New(cols, nil, Options{}); err == nil {
		t.Fatalf("duplicate column field should be rejected")
	}
}

func TestEmptyStateShownOnce(t *testing.T) {
	e, err := New(userColumns(), nil, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	v := e.View()
	if !v.Empty || v.EmptyMessage != EmptyMessage {
		t.Fatalf("empty table should render the empty state, got %+v", v)
	}
	// loading suppresses the empty state
	e.SetLoading(true)
	if v := e.View(); v.Empty {
		t.Fatalf("loading table must not show empty state")
	}
}

func TestAbsentFieldRendersEmptyCell(t *testing.T) {
	e, _ := New([]Column{{Field: "name"}, {Field: "email"}}, threeUsers(), Options{})
	v := e.View()
	if got := v.Cell(v.Rows[0], "email"); got != "" {
		t.Fatalf("absent field should render empty, got %q", got)
	}
	if got := v.Cell(v.Rows[0], "name"); got != "John Doe" {
		t.Fatalf("cell render: got %q", got)
	}
}

func TestSortCycleRestoresOriginalOrder(t *testing.T) {
	e, _ := New(userColumns(), threeUsers(), Options{})
	orig := names(e.View().Rows)

	e.Sort("name")
	if got := names(e.View().Rows); !reflect.DeepEqual(got, []string{"Bob Johnson", "Jane Smith", "John Doe"}) {
		t.Fatalf("asc sort: got %v", got)
	}
	e.Sort("name")
	if got := names(e.View().Rows); !reflect.DeepEqual(got, []string{"John Doe", "Jane Smith", "Bob Johnson"}) {
		t.Fatalf("desc sort: got %v", got)
	}
	e.Sort("name")
	if got := names(e.View().Rows); !reflect.DeepEqual(got, orig) {
		t.Fatalf("third sort should restore original order, got %v want %v", got, orig)
	}
}

func TestSortStableOnTies(t *testing.T) {
	rows := []Row{
		NewRow("a", map[string]any{"name": "x", "status": "same"}),
		NewRow("b", map[string]any{"name": "y", "status": "same"}),
		NewRow("c", map[string]any{"name": "z", "status": "same"}),
	}
	e, _ := New(userColumns(), rows, Options{})
	e.Sort("status")
	got := e.View().Rows
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("ties must keep original order, got %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestNumericSort(t *testing.T) {
	e, _ := New(userColumns(), threeUsers(), Options{})
	e.Sort("score")
	if got := names(e.View().Rows); !reflect.DeepEqual(got, []string{"John Doe", "Bob Johnson", "Jane Smith"}) {
		t.Fatalf("numeric asc: got %v", got)
	}
}

func TestLocalFilterCaseInsensitiveSubstring(t *testing.T) {
	e, _ := New(userColumns(), threeUsers(), Options{Searchable: true})
	e.SetSearch("John")
	got := names(e.View().Rows)
	// substring semantics: "John" also hits "Bob Johnson"
	if !reflect.DeepEqual(got, []string{"John Doe", "Bob Johnson"}) {
		t.Fatalf("filter John: got %v", got)
	}
	e.SetSearch("john doe")
	if got := names(e.View().Rows); !reflect.DeepEqual(got, []string{"John Doe"}) {
		t.Fatalf("case-insensitive filter: got %v", got)
	}
	e.SetSearch("")
	if got := len(e.View().Rows); got != 3 {
		t.Fatalf("clearing filter should restore all rows, got %d", got)
	}
}

func TestPaginationLabelAndClamp(t *testing.T) {
	rows := make([]Row, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, NewRow(string(rune('a'+i)), map[string]any{"name": "p", "score": i}))
	}
	e, _ := New(userColumns(), rows, Options{PageSize: 10})

	v := e.View()
	if v.TotalPages != 3 {
		t.Fatalf("25 rows at size 10 should report 3 pages, got %d", v.TotalPages)
	}
	if v.RangeLabel != "1–10 of 25" {
		t.Fatalf("first page label: got %q", v.RangeLabel)
	}
	e.SetPage(2)
	if v := e.View(); v.RangeLabel != "21–25 of 25" || len(v.Rows) != 5 {
		t.Fatalf("last page: label %q rows %d", v.RangeLabel, len(v.Rows))
	}
	// out-of-range pages clamp to the last page
	e.SetPage(99)
	if v := e.View(); v.Page != 2 {
		t.Fatalf("page should clamp to 2, got %d", v.Page)
	}
	e.SetPage(-1)
	if v := e.View(); v.Page != 0 {
		t.Fatalf("negative page should clamp to 0, got %d", v.Page)
	}
	e.SetPageSize(25)
	if v := e.View(); v.TotalPages != 1 || v.Page != 0 {
		t.Fatalf("resize should re-clamp, got pages=%d page=%d", v.TotalPages, v.Page)
	}
}

func TestSelectionTogglesExactlyOneID(t *testing.T) {
	e, _ := New(userColumns(), threeUsers(), Options{Selectable: true})
	var reported [][]string
	e.OnSelectionChange(func(ids []string) { reported = append(reported, ids) })

	e.ToggleRow("u2")
	e.ToggleRow("u1")
	e.ToggleRow("u2")
	want := [][]string{{"u2"}, {"u1", "u2"}, {"u1"}}
	if !reflect.DeepEqual(reported, want) {
		t.Fatalf("selection reports: got %v want %v", reported, want)
	}
	if got := e.Selection(); !reflect.DeepEqual(got, []string{"u1"}) {
		t.Fatalf("final selection: got %v", got)
	}
}

func TestSelectionSurvivesOrResetsOnPageChange(t *testing.T) {
	rows := make([]Row, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, NewRow(string(rune('a'+i)), map[string]any{"name": "p"}))
	}
	keep, _ := New(userColumns(), rows, Options{PageSize: 10, Selectable: true})
	keep.ToggleRow("a")
	keep.SetPage(1)
	if got := keep.Selection(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("default: selection should survive pagination, got %v", got)
	}

	reset, _ := New(userColumns(), rows, Options{PageSize: 10, Selectable: true, ResetSelectionOnPageChange: true})
	var last []string
	reset.OnSelectionChange(func(ids []string) { last = ids })
	reset.ToggleRow("a")
	reset.SetPage(1)
	if len(reset.Selection()) != 0 || len(last) != 0 {
		t.Fatalf("reset option: selection should clear on page change, got %v (reported %v)", reset.Selection(), last)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	e, _ := New(userColumns(), threeUsers(), Options{})
	var deleted []string
	e.OnDelete(func(id string) { deleted = append(deleted, id) })

	if err := e.ConfirmDelete(); err != ErrNoPendingDelete {
		t.Fatalf("confirm without request should fail, got %v", err)
	}
	e.RequestDelete("u2")
	if len(deleted) != 0 {
		t.Fatalf("request alone must not delete")
	}
	e.CancelDelete()
	if err := e.ConfirmDelete(); err != ErrNoPendingDelete {
		t.Fatalf("cancel should drop the pending delete")
	}
	e.RequestDelete("u2")
	if err := e.ConfirmDelete(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !reflect.DeepEqual(deleted, []string{"u2"}) {
		t.Fatalf("delete callback: got %v", deleted)
	}
}

func TestServerModeEmitsQueryInsteadOfFiltering(t *testing.T) {
	e, _ := New(userColumns(), nil, Options{ServerMode: true, PageSize: 10})
	var states []query.State
	e.OnQueryChange(func(s query.State) { states = append(states, s) })

	if err := e.SetServerPage(threeUsers(), 42); err != nil {
		t.Fatalf("set server page: %v", err)
	}
	e.SetSearch("John")
	e.Sort("name")
	e.SetPage(3)

	if len(states) != 3 {
		t.Fatalf("expected 3 query emissions, got %d", len(states))
	}
	if states[0].Search != "John" || states[0].Page != 0 {
		t.Fatalf("search emission: %+v", states[0])
	}
	if states[1].SortField != "name" || states[1].SortDir != query.Ascending {
		t.Fatalf("sort emission: %+v", states[1])
	}
	if states[2].Page != 3 {
		t.Fatalf("page emission: %+v", states[2])
	}
	// rows were not filtered locally
	if got := len(e.View().Rows); got != 3 {
		t.Fatalf("server mode must not filter locally, got %d rows", got)
	}
	if v := e.View(); v.Total != 42 || v.TotalPages != 5 {
		t.Fatalf("server totals: %+v", v)
	}
}
