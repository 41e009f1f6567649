// Package rooms keeps the live game-room registry in memory. Rooms announce
// themselves over HTTP heartbeats and silently fall out of the listing once
// their lease expires.
package rooms

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Room is one live game room as reported by its host process.
type Room struct {
	ID        string            `json:"id"`
	Game      string            `json:"game"`
	Region    string            `json:"region"`
	Players   int               `json:"players"`
	MaxSeats  int               `json:"maxSeats"`
	Status    string            `json:"status"`
	Labels    map[string]string `json:"labels,omitempty"`
	StartedAt time.Time         `json:"startedAt"`
	ExpireAt  time.Time         `json:"-"`
}

// Store keeps lightweight room registry state in-memory.
type Store struct {
	mu    sync.RWMutex
	ttl   time.Duration
	rooms map[string]*Room
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Store{ttl: ttl, rooms: map[string]*Room{}, now: time.Now}
}

// Heartbeat inserts or refreshes a room's lease.
func (s *Store) Heartbeat(r *Room) {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	cur := s.rooms[r.ID]
	if cur == nil {
		if r.StartedAt.IsZero() {
			r.StartedAt = now
		}
		r.ExpireAt = now.Add(s.ttl)
		s.rooms[r.ID] = r
		return
	}
	// merge the reporter's fields, keep the original start time
	cur.Game, cur.Region, cur.Status = r.Game, r.Region, r.Status
	cur.Players, cur.MaxSeats = r.Players, r.MaxSeats
	if r.Labels != nil {
		cur.Labels = r.Labels
	}
	cur.ExpireAt = now.Add(s.ttl)
}

// ListOptions narrows and pages a listing.
type ListOptions struct {
	Page     int // one-based
	PageSize int
	Game     string
	Region   string
	Search   string
}

// List returns one page of live rooms ordered by id, plus the total count
// after filtering. Expired rooms are dropped on the way out.
func (s *Store) List(opts ListOptions) ([]*Room, int) {
	s.mu.Lock()
	now := s.now()
	all := make([]*Room, 0, len(s.rooms))
	for id, r := range s.rooms {
		if now.After(r.ExpireAt) {
			delete(s.rooms, id)
			continue
		}
		if opts.Game != "" && r.Game != opts.Game {
			continue
		}
		if opts.Region != "" && r.Region != opts.Region {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(opts.Search)); q != "" {
			if !strings.Contains(strings.ToLower(r.ID), q) && !strings.Contains(strings.ToLower(r.Game), q) {
				continue
			}
		}
		cp := *r
		all = append(all, &cp)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)

	size := opts.PageSize
	if size <= 0 {
		size = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	lo := (page - 1) * size
	if lo >= total {
		return []*Room{}, total
	}
	hi := lo + size
	if hi > total {
		hi = total
	}
	return all[lo:hi], total
}

// Get returns a live room by id.
func (s *Store) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok || s.now().After(r.ExpireAt) {
		return nil, false
	}
	cp := *r
	return &cp, true
}

// Close removes a room immediately, e.g. on an admin force-close.
func (s *Store) Close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return false
	}
	delete(s.rooms, id)
	return true
}
