// Package poll re-issues a view's fetch on a fixed interval, the way the
// live security and room tables refresh. Every fetch carries a sequence
// number and a slow response that has been superseded by a newer one is
// dropped instead of rendered, so pages never go backwards in time.
package poll

import (
	"context"
	"sync"
	"time"
)

// Fetch loads one snapshot of the view's data.
type Fetch func(ctx context.Context) (any, error)

// Apply renders a snapshot. It only ever runs for the newest completed
// fetch.
type Apply func(v any)

// Poller drives Fetch on an interval and funnels results through the
// supersede guard into Apply.
type Poller struct {
	interval time.Duration
	fetch    Fetch
	apply    Apply
	onError  func(error)

	mu      sync.Mutex
	issued  uint64
	applied uint64
	kick    chan struct{}
}

// New builds a poller. Intervals in practice sit between a couple of
// seconds and half a minute depending on the view; anything non-positive
// defaults to 10s.
func New(interval time.Duration, fetch Fetch, apply Apply) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{interval: interval, fetch: fetch, apply: apply, kick: make(chan struct{}, 1)}
}

// OnError observes fetch failures; a failed poll is logged and retried on
// the next tick, never fatal.
func (p *Poller) OnError(fn func(error)) { p.mu.Lock(); p.onError = fn; p.mu.Unlock() }

// Kick requests an immediate out-of-band refresh, e.g. when an invalidation
// event arrives on the feed.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done. It fetches once immediately, then on every
// tick or kick.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.poll(ctx)
		case <-p.kick:
			p.poll(ctx)
		}
	}
}

// poll runs a single guarded fetch synchronously. The guard still matters:
// callers may also invoke PollAsync, and a kicked refresh can overtake a
// slow timed one.
func (p *Poller) poll(ctx context.Context) {
	seq := p.next()
	v, err := p.fetch(ctx)
	p.finish(seq, v, err)
}

// PollAsync issues a guarded fetch on its own goroutine.
func (p *Poller) PollAsync(ctx context.Context) {
	seq := p.next()
	go func() {
		v, err := p.fetch(ctx)
		p.finish(seq, v, err)
	}()
}

func (p *Poller) next() uint64 {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()
	return seq
}

// finish applies the result only if no newer fetch has already been
// applied; stale responses are discarded.
func (p *Poller) finish(seq uint64, v any, err error) {
	if err != nil {
		p.mu.Lock()
		fn := p.onError
		p.mu.Unlock()
		if fn != nil {
			fn(err)
		}
		return
	}
	p.mu.Lock()
	if seq <= p.applied {
		p.mu.Unlock()
		return
	}
	p.applied = seq
	apply := p.apply
	p.mu.Unlock()
	if apply != nil {
		apply(v)
	}
}
