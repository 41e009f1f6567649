// Package secevents records and serves the security audit trail shown on
// the dashboard's security page: logins, bans, permission denials, bulk
// operations.
package secevents

import "time"

// Event is one security-relevant occurrence.
type Event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Actor    string    `json:"actor"`
	Action   string    `json:"action"`
	Severity string    `json:"severity"`
	IP       string    `json:"ip,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// ListOptions narrows and pages a listing. Results are always time-ordered;
// SortAsc flips to oldest-first.
type ListOptions struct {
	Page     int // one-based
	PageSize int
	Search   string
	Severity string
	Actor    string
	SortAsc  bool
}

// Store persists and queries events.
type Store interface {
	Insert(evt Event) error
	List(opts ListOptions) ([]Event, int64, error)
	Close() error
}
