package secevents

import (
	"fmt"
	"testing"
	"time"
)

func seedMemory(t *testing.T, n int) *Memory {
	t.Helper()
	m := NewMemory()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		sev := "info"
		if i%4 == 0 {
			sev = "warning"
		}
		err := m.Insert(Event{
			Time:     base.Add(time.Duration(i) * time.Minute),
			Actor:    fmt.Sprintf("admin%d", i%3),
			Action:   "user.ban",
			Severity: sev,
			Detail:   fmt.Sprintf("banned player-%02d", i),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	return m
}

func TestListNewestFirstByDefault(t *testing.T) {
	m := seedMemory(t, 10)
	page, total, err := m.List(ListOptions{Page: 1, PageSize: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 10 || len(page) != 3 {
		t.Fatalf("total=%d len=%d", total, len(page))
	}
	if !page[0].Time.After(page[2].Time) {
		t.Fatalf("not newest-first: %v %v", page[0].Time, page[2].Time)
	}

	asc, _, _ := m.List(ListOptions{Page: 1, PageSize: 3, SortAsc: true})
	if !asc[0].Time.Before(asc[1].Time) {
		t.Fatalf("asc order broken")
	}
}

func TestFiltersAndSearch(t *testing.T) {
	m := seedMemory(t, 20)

	_, total, _ := m.List(ListOptions{Page: 1, PageSize: 50, Severity: "warning"})
	if total != 5 {
		t.Fatalf("warning count=%d, want 5", total)
	}
	_, total, _ = m.List(ListOptions{Page: 1, PageSize: 50, Actor: "admin1"})
	if total != 7 {
		t.Fatalf("actor count=%d, want 7", total)
	}
	_, total, _ = m.List(ListOptions{Page: 1, PageSize: 50, Search: "PLAYER-07"})
	if total != 1 {
		t.Fatalf("search count=%d, want 1", total)
	}
}

func TestInsertFillsIDAndTime(t *testing.T) {
	m := NewMemory()
	if err := m.Insert(Event{Actor: "x", Action: "login"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	page, _, _ := m.List(ListOptions{Page: 1, PageSize: 1})
	if page[0].ID == "" || page[0].Time.IsZero() {
		t.Fatalf("id/time not defaulted: %+v", page[0])
	}
}

func TestBufferIsBounded(t *testing.T) {
	m := NewMemory()
	for i := 0; i < memoryCap+50; i++ {
		m.Insert(Event{Actor: "a", Action: "x"})
	}
	_, total, _ := m.List(ListOptions{Page: 1, PageSize: 1})
	if total != memoryCap {
		t.Fatalf("buffer grew past cap: %d", total)
	}
}

func TestPagePastEndIsEmpty(t *testing.T) {
	m := seedMemory(t, 5)
	page, total, _ := m.List(ListOptions{Page: 4, PageSize: 2})
	if total != 5 || len(page) != 0 {
		t.Fatalf("past-end page: total=%d len=%d", total, len(page))
	}
}
