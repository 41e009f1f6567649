// Package feed carries list-invalidation events between the mutation path
// and connected dashboard sessions. A mutation publishes one event naming
// the resource it touched; subscribers (the SSE bridge, cache janitors)
// react by dropping cached pages and re-fetching.
package feed

import "time"

// Event is one invalidation notice. IDs may be empty when the whole
// resource changed shape (bulk import, schema reload).
type Event struct {
	Resource string    `json:"resource"`
	Action   string    `json:"action"`
	IDs      []string  `json:"ids,omitempty"`
	At       time.Time `json:"at"`
}

// Bus publishes and fans out events. Implementations can be backed by
// Redis, Kafka, or an in-process hub for single-node deployments.
type Bus interface {
	Publish(evt Event) error
	Subscribe() (<-chan Event, func(), error)
	Close() error
}
