package views

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parlaygames/pitboss/pkg/grid"
)

const sampleYAML = `views:
  - name: users
    resource: users
    pageSize: 10
    selectable: true
    searchable: true
    permission: users:read
    columns:
      - field: username
        label: Username
        sortable: true
        flex: 2
      - field: status
        label: Status
        kind: chip
      - field: createdAt
        label: Joined
        kind: date
        sortable: true
  - name: rooms
    columns:
      - field: id
        label: Room
`

func writeDefs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "views.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadAndDefaults(t *testing.T) {
	r, err := Load(writeDefs(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	users, ok := r.Get("users")
	if !ok {
		t.Fatalf("users view missing")
	}
	if users.PageSize != 10 || !users.Selectable || users.Permission != "users:read" {
		t.Fatalf("users def: %+v", users)
	}

	rooms, _ := r.Get("rooms")
	if rooms.Resource != "rooms" || rooms.PageSize != 20 {
		t.Fatalf("defaults not applied: %+v", rooms)
	}
	if len(r.All()) != 2 {
		t.Fatalf("All: %d", len(r.All()))
	}
}

func TestGridColumnsKindMapping(t *testing.T) {
	r, err := Load(writeDefs(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	users, _ := r.Get("users")
	cols := users.GridColumns()
	if len(cols) != 3 {
		t.Fatalf("columns: %d", len(cols))
	}
	if cols[0].Kind != grid.KindText || !cols[0].Sortable || cols[0].Flex != 2 {
		t.Fatalf("text column: %+v", cols[0])
	}
	if cols[1].Kind != grid.KindChip || cols[2].Kind != grid.KindDate {
		t.Fatalf("kinds: %v %v", cols[1].Kind, cols[2].Kind)
	}
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := writeDefs(t, sampleYAML)
	r, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.WriteFile(path, []byte("views: [{name: broken"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := r.Reload(); err == nil {
		t.Fatalf("broken yaml should fail reload")
	}
	if _, ok := r.Get("users"); !ok {
		t.Fatalf("previous definitions lost after failed reload")
	}
}

func TestLoadRejectsBadDefinitions(t *testing.T) {
	bad := []string{
		"views: [{name: '', columns: [{field: a}]}]",
		"views: [{name: x, columns: []}]",
		"views: [{name: x, columns: [{field: a}]}, {name: x, columns: [{field: b}]}]",
	}
	for i, content := range bad {
		if _, err := Load(writeDefs(t, content)); err == nil {
			t.Fatalf("case %d should fail", i)
		}
	}
}
