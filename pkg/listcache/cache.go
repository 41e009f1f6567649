// Package listcache is the shared cache of list results that many views read
// without redundant fetches. Keys are deterministic view+query descriptors
// (see query.State.Key); the only writers are the fetch completion handler
// (Set) and mutation invalidation (Invalidate/InvalidateView). The cache is
// injected wherever it is needed so tests can swap it out.
package listcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is the cache contract. Values are raw JSON list payloads so memory
// and redis backends stay interchangeable.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Invalidate drops exact keys.
	Invalidate(ctx context.Context, keys ...string) error
	// InvalidateView drops every cached query under one view identity,
	// which is what a mutation against that view's list wants.
	InvalidateView(ctx context.Context, view string) error
}

type entry struct {
	val []byte
	exp time.Time
}

// Memory is the in-process store. Single event-loop callers never race, but
// the mutex keeps it correct from any goroutine.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemory() *Memory { return &Memory{entries: map[string]entry{}} }

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.val...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) InvalidateView(_ context.Context, view string) error {
	view = strings.TrimSpace(view)
	if view == "" {
		return nil
	}
	prefix := view + "|"
	m.mu.Lock()
	for k := range m.entries {
		if k == view || strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
	return nil
}
