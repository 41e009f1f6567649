package grid

import (
	"fmt"
	"strings"
	"time"
)

// CellKind selects how a column presents its values. Custom columns must
// provide a Render func; the other kinds carry a default formatter.
type CellKind string

const (
	KindText   CellKind = "text"
	KindChip   CellKind = "chip"
	KindDate   CellKind = "date"
	KindCustom CellKind = "custom"
)

// Column describes one field of a table: identifier, label, layout hint and
// presentation. Field must be unique within a table instance.
type Column struct {
	Field    string
	Label    string
	Flex     int
	Kind     CellKind
	Sortable bool
	// Render overrides the default formatter for this column.
	Render func(v any) string
	// Less orders two raw values; nil falls back to the generic comparator.
	Less func(a, b any) bool
}

func validateColumns(cols []Column) error {
	seen := map[string]struct{}{}
	for _, col := range cols {
		f := strings.TrimSpace(col.Field)
		if f == "" {
			return fmt.Errorf("grid: column with empty field")
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("grid: duplicate column field %q", f)
		}
		seen[f] = struct{}{}
		switch col.Kind {
		case "", KindText, KindChip, KindDate:
		case KindCustom:
			if col.Render == nil {
				return fmt.Errorf("grid: custom column %q needs a render func", f)
			}
		default:
			return fmt.Errorf("grid: column %q has unknown kind %q", f, col.Kind)
		}
	}
	return nil
}

// Cell formats a row value for this column. A field absent from the row
// renders as the empty string rather than failing.
func (c Column) Cell(r Row) string {
	v, ok := r.Fields[c.Field]
	if !ok || v == nil {
		return ""
	}
	if c.Render != nil {
		return c.Render(v)
	}
	switch c.Kind {
	case KindDate:
		switch t := v.(type) {
		case time.Time:
			return t.Format(time.RFC3339)
		case string:
			return t
		}
	}
	return fmt.Sprintf("%v", v)
}
