package grid

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoPendingDelete is returned when ConfirmDelete is called without a
// preceding RequestDelete.
var ErrNoPendingDelete = errors.New("grid: no delete pending confirmation")

// ToggleRow flips one row in or out of the selection set and reports the
// full new set. Exactly that id changes; nothing else.
func (e *Engine) ToggleRow(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	e.mu.Lock()
	if !e.opts.Selectable {
		e.mu.Unlock()
		return
	}
	if _, ok := e.selection[id]; ok {
		delete(e.selection, id)
	} else {
		e.selection[id] = struct{}{}
	}
	e.emitSelectionLocked()
}

// SetSelection replaces the whole selection set.
func (e *Engine) SetSelection(ids []string) {
	e.mu.Lock()
	if !e.opts.Selectable {
		e.mu.Unlock()
		return
	}
	e.selection = map[string]struct{}{}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			e.selection[id] = struct{}{}
		}
	}
	e.emitSelectionLocked()
}

// ClearSelection empties the selection set.
func (e *Engine) ClearSelection() { e.SetSelection(nil) }

// Selection returns the selected row ids, sorted for determinism.
func (e *Engine) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectionLocked()
}

func (e *Engine) selectionLocked() []string {
	out := make([]string, 0, len(e.selection))
	for id := range e.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// emitSelectionLocked unlocks and notifies the host with the complete set.
func (e *Engine) emitSelectionLocked() {
	fn := e.onSelection
	set := e.selectionLocked()
	e.mu.Unlock()
	if fn != nil {
		fn(set)
	}
}

// RequestDelete marks a row for deletion. Nothing destructive happens until
// ConfirmDelete; this two-step contract is how the engine guarantees no
// destructive action skips confirmation.
func (e *Engine) RequestDelete(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	e.mu.Lock()
	e.pendingDelete = id
	e.mu.Unlock()
}

// CancelDelete drops the pending delete without firing anything.
func (e *Engine) CancelDelete() {
	e.mu.Lock()
	e.pendingDelete = ""
	e.mu.Unlock()
}

// ConfirmDelete fires the delete callback for the pending row and clears the
// pending state. Without a pending request it returns ErrNoPendingDelete and
// the callback never runs.
func (e *Engine) ConfirmDelete() error {
	e.mu.Lock()
	id := e.pendingDelete
	fn := e.onDelete
	e.pendingDelete = ""
	e.mu.Unlock()
	if id == "" {
		return ErrNoPendingDelete
	}
	if fn != nil {
		fn(id)
	}
	return nil
}
