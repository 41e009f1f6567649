// Package views loads the table view definitions the dashboard serves:
// which columns each resource shows, how they render, and what permission
// gates the page. Definitions live in a YAML file and hot-reload on edit.
package views

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/parlaygames/pitboss/pkg/grid"
)

// ColumnDef is one column in a view definition file.
type ColumnDef struct {
	Field    string `yaml:"field" json:"field"`
	Label    string `yaml:"label" json:"label"`
	Kind     string `yaml:"kind" json:"kind"`
	Flex     int    `yaml:"flex" json:"flex"`
	Sortable bool   `yaml:"sortable" json:"sortable"`
}

// ViewDef describes one dashboard table.
type ViewDef struct {
	Name       string      `yaml:"name" json:"name"`
	Resource   string      `yaml:"resource" json:"resource"`
	PageSize   int         `yaml:"pageSize" json:"pageSize"`
	Selectable bool        `yaml:"selectable" json:"selectable"`
	Searchable bool        `yaml:"searchable" json:"searchable"`
	Permission string      `yaml:"permission" json:"permission"`
	Columns    []ColumnDef `yaml:"columns" json:"columns"`
}

// GridColumns maps the definition onto engine columns.
func (v ViewDef) GridColumns() []grid.Column {
	out := make([]grid.Column, 0, len(v.Columns))
	for _, c := range v.Columns {
		kind := grid.KindText
		switch strings.ToLower(c.Kind) {
		case "chip":
			kind = grid.KindChip
		case "date":
			kind = grid.KindDate
		case "custom":
			kind = grid.KindCustom
		}
		out = append(out, grid.Column{
			Field:    c.Field,
			Label:    c.Label,
			Kind:     kind,
			Flex:     c.Flex,
			Sortable: c.Sortable,
		})
	}
	return out
}

type fileFormat struct {
	Views []ViewDef `yaml:"views"`
}

// Registry holds the current set of view definitions and swaps them
// atomically on reload.
type Registry struct {
	mu    sync.RWMutex
	path  string
	views map[string]ViewDef
}

// Load reads the definitions file and validates it.
func Load(path string) (*Registry, error) {
	r := &Registry{path: path, views: map[string]ViewDef{}}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the file. On any error the previous definitions stay in
// effect.
func (r *Registry) Reload() error {
	b, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse %s: %w", r.path, err)
	}
	next := make(map[string]ViewDef, len(f.Views))
	for _, v := range f.Views {
		v.Name = strings.TrimSpace(v.Name)
		if v.Name == "" {
			return fmt.Errorf("%s: view without a name", r.path)
		}
		if _, dup := next[v.Name]; dup {
			return fmt.Errorf("%s: duplicate view %q", r.path, v.Name)
		}
		if v.Resource == "" {
			v.Resource = v.Name
		}
		if v.PageSize <= 0 {
			v.PageSize = 20
		}
		if len(v.Columns) == 0 {
			return fmt.Errorf("%s: view %q has no columns", r.path, v.Name)
		}
		next[v.Name] = v
	}
	r.mu.Lock()
	r.views = next
	r.mu.Unlock()
	return nil
}

// Get returns one view definition.
func (r *Registry) Get(name string) (ViewDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[name]
	return v, ok
}

// All returns every definition, for the /api/views listing.
func (r *Registry) All() []ViewDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ViewDef, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}
	return out
}
