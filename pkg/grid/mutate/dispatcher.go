// Package mutate wraps create/update/delete calls against the REST client
// with a uniform idle -> pending -> success|failure lifecycle and
// invalidate-and-refetch cache semantics. There is no optimistic merge
// anywhere: a successful mutation drops the view's cached lists and the next
// fetch renders fresh data.
package mutate

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/parlaygames/pitboss/pkg/listcache"
)

// Phase is the observable dispatcher state.
type Phase int

const (
	Idle Phase = iota
	Pending
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Kind is the operation kind of a mutation request.
type Kind string

const (
	Create     Kind = "create"
	Update     Kind = "update"
	Delete     Kind = "delete"
	BulkUpdate Kind = "bulk-update"
)

// Request describes one mutation: the target resource, ids, and payload.
// Bulk requests carry the whole id set plus a single operation descriptor
// and go out as exactly one wire request, never one per row.
type Request struct {
	Resource string
	Kind     Kind
	IDs      []string
	Payload  any
}

// Doer submits a mutation to the backend. pkg/sdk's Client satisfies it via
// sdk.MutationDoer.
type Doer interface {
	Do(ctx context.Context, req Request) error
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(ctx context.Context, req Request) error

func (f DoerFunc) Do(ctx context.Context, req Request) error { return f(ctx, req) }

var errBadRequest = errors.New("mutate: request needs a resource and a kind")

// Dispatcher serializes mutations for one host view.
type Dispatcher struct {
	doer  Doer
	cache listcache.Store

	mu       sync.Mutex
	phase    Phase
	lastErr  error
	onChange func(Phase, error)
}

// New wires a dispatcher to its backend and the shared list cache. cache may
// be nil when the host does its own refetching.
func New(doer Doer, cache listcache.Store) *Dispatcher {
	return &Dispatcher{doer: doer, cache: cache}
}

// OnChange observes phase transitions. The error argument is non-nil only
// for Failed.
func (d *Dispatcher) OnChange(fn func(Phase, error)) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// Phase returns the current phase and, for Failed, the error that caused it.
func (d *Dispatcher) Phase() (Phase, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase, d.lastErr
}

func (d *Dispatcher) transition(p Phase, err error) {
	d.mu.Lock()
	d.phase = p
	d.lastErr = err
	fn := d.onChange
	d.mu.Unlock()
	if fn != nil {
		fn(p, err)
	}
}

// Dispatch runs one mutation. On success the resource's cached list queries
// are invalidated exactly once; on failure cache and data are left exactly
// as they were.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	req.Resource = strings.TrimSpace(req.Resource)
	if req.Resource == "" || req.Kind == "" {
		return errBadRequest
	}
	d.transition(Pending, nil)
	if err := d.doer.Do(ctx, req); err != nil {
		d.transition(Failed, err)
		return err
	}
	if d.cache != nil {
		if err := d.cache.InvalidateView(ctx, req.Resource); err != nil {
			// the mutation itself landed; a cache hiccup degrades to a
			// stale-until-refetch view, not a failure
			d.transition(Succeeded, nil)
			return nil
		}
	}
	d.transition(Succeeded, nil)
	return nil
}

// BulkOp is the single operation descriptor applied to a bulk id set.
type BulkOp struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// DispatchBulk applies one operation to a batch of ids in a single request.
func (d *Dispatcher) DispatchBulk(ctx context.Context, resource string, ids []string, op BulkOp) error {
	return d.Dispatch(ctx, Request{Resource: resource, Kind: BulkUpdate, IDs: ids, Payload: op})
}
