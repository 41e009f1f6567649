// Package query models the user-adjustable parameters governing what slice
// of data a table displays, and translates them into the request parameters
// the list endpoints understand.
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Direction is a sort direction. Unsorted is the third state of the
// asc/desc/none cycle.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return ""
}

// Operator is a structured-filter operator.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
)

// Predicate is one structured filter: field, operator, value.
type Predicate struct {
	Field string
	Op    Operator
	Value string
}

// State carries page, sort, search and structured filters for one view.
// Pages are zero-based here; Translate converts to the one-based wire form.
// A State lives with its view: created on mount with defaults, mutated by
// interaction, dropped on unmount. Never persisted.
type State struct {
	Page      int
	PageSize  int
	SortField string
	SortDir   Direction
	Search    string
	Filters   []Predicate
}

// NewState returns a default state on the first page.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = 20
	}
	return State{PageSize: pageSize}
}

// WithFilter returns a copy with one more predicate.
func (s State) WithFilter(field string, op Operator, value string) State {
	cp := s
	cp.Filters = append(append([]Predicate(nil), s.Filters...), Predicate{Field: field, Op: op, Value: value})
	return cp
}

// Key derives a deterministic cache key for this state under a view
// identity. Equal states always produce equal keys. User-supplied
// components are escaped so a search string can never collide with the
// key of a genuinely filtered state.
func (s State) Key(view string) string {
	parts := []string{
		strings.TrimSpace(view),
		fmt.Sprintf("p=%d", s.Page),
		fmt.Sprintf("n=%d", s.PageSize),
	}
	if s.SortField != "" && s.SortDir != Unsorted {
		parts = append(parts, "s="+url.QueryEscape(s.SortField)+":"+s.SortDir.String())
	}
	if q := strings.TrimSpace(s.Search); q != "" {
		parts = append(parts, "q="+url.QueryEscape(q))
	}
	if len(s.Filters) > 0 {
		fs := make([]string, 0, len(s.Filters))
		for _, p := range s.Filters {
			fs = append(fs, url.QueryEscape(p.Field)+"="+url.QueryEscape(string(p.Op))+"="+url.QueryEscape(p.Value))
		}
		sort.Strings(fs)
		parts = append(parts, "f="+strings.Join(fs, ","))
	}
	return strings.Join(parts, "|")
}
