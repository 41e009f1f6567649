package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Translate maps a State to the wire parameters consumed by list endpoints:
// page (one-based), limit, sortBy, sortOrder, search, plus one parameter per
// structured filter. Pure function of its input; callers re-invoke it for
// every fetch rather than caching the result.
func Translate(s State) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(s.Page+1))
	size := s.PageSize
	if size <= 0 {
		size = 20
	}
	v.Set("limit", strconv.Itoa(size))
	if s.SortField != "" && s.SortDir != Unsorted {
		v.Set("sortBy", s.SortField)
		v.Set("sortOrder", s.SortDir.String())
	}
	if q := strings.TrimSpace(s.Search); q != "" {
		v.Set("search", q)
	}
	for _, p := range s.Filters {
		f := strings.TrimSpace(p.Field)
		if f == "" {
			continue
		}
		// Equality filters ride as bare params; other operators are
		// suffixed so the server can tell them apart.
		if p.Op == "" || p.Op == OpEq {
			v.Add(f, p.Value)
			continue
		}
		v.Add(f+"["+string(p.Op)+"]", p.Value)
	}
	return v
}
