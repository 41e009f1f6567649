package grid

import (
	"fmt"
	"strings"
)

// Row is one record: a stable unique identifier plus a field -> value map.
// The identifier never changes for the lifetime of the row in a view; it is
// what selection sets and delete confirmations refer to.
type Row struct {
	ID     string
	Fields map[string]any
}

// NewRow builds a row from an id and field pairs.
func NewRow(id string, fields map[string]any) Row {
	if fields == nil {
		fields = map[string]any{}
	}
	return Row{ID: id, Fields: fields}
}

func validateRows(rows []Row) error {
	seen := map[string]struct{}{}
	for i, r := range rows {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("grid: row %d has empty id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("grid: duplicate row id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// matches reports whether any string-valued field contains the needle,
// case-insensitive. Non-string fields are ignored on purpose: free-text
// search only looks at text.
func (r Row) matches(needle string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, v := range r.Fields {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
