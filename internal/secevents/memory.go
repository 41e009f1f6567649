package secevents

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const memoryCap = 10000

// Memory keeps the most recent events in a bounded in-process buffer. It is
// the default store for dev and single-node deployments without ClickHouse.
type Memory struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Insert(evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	if len(m.events) > memoryCap {
		m.events = m.events[len(m.events)-memoryCap:]
	}
	return nil
}

func (m *Memory) List(opts ListOptions) ([]Event, int64, error) {
	m.mu.RLock()
	matched := make([]Event, 0, len(m.events))
	for _, e := range m.events {
		if opts.Severity != "" && e.Severity != opts.Severity {
			continue
		}
		if opts.Actor != "" && e.Actor != opts.Actor {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(opts.Search)); q != "" {
			hay := strings.ToLower(e.Actor + " " + e.Action + " " + e.Detail)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		matched = append(matched, e)
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if opts.SortAsc {
			return matched[i].Time.Before(matched[j].Time)
		}
		return matched[i].Time.After(matched[j].Time)
	})

	total := int64(len(matched))
	size := opts.PageSize
	if size <= 0 {
		size = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	lo := (page - 1) * size
	if lo >= len(matched) {
		return []Event{}, total, nil
	}
	hi := lo + size
	if hi > len(matched) {
		hi = len(matched)
	}
	return matched[lo:hi], total, nil
}

func (m *Memory) Close() error { return nil }
