package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStaleResponseNeverApplied(t *testing.T) {
	var mu sync.Mutex
	var applied []string
	p := New(time.Hour, nil, func(v any) {
		mu.Lock()
		applied = append(applied, v.(string))
		mu.Unlock()
	})

	// two in-flight fetches; the newer one lands first, the straggler after
	first := p.next()
	second := p.next()
	p.finish(second, "new", nil)
	p.finish(first, "old", nil)

	mu.Lock()
	defer mu.Unlock()
	if len(applied) != 1 || applied[0] != "new" {
		t.Fatalf("stale response leaked through: %v", applied)
	}
}

func TestNewerResponseStillAppliesAfterOlder(t *testing.T) {
	var applied []string
	p := New(time.Hour, nil, func(v any) { applied = append(applied, v.(string)) })
	a := p.next()
	b := p.next()
	p.finish(a, "first", nil)
	p.finish(b, "second", nil)
	if len(applied) != 2 || applied[1] != "second" {
		t.Fatalf("in-order responses should both apply: %v", applied)
	}
}

func TestErrorsReportedNotApplied(t *testing.T) {
	boom := errors.New("fetch failed")
	var got error
	p := New(time.Hour, func(ctx context.Context) (any, error) { return nil, boom }, func(v any) {
		t.Fatalf("apply must not run on error")
	})
	p.OnError(func(err error) { got = err })
	p.poll(context.Background())
	if !errors.Is(got, boom) {
		t.Fatalf("error callback: %v", got)
	}
}

func TestRunFetchesImmediatelyAndOnKick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetched := make(chan struct{}, 8)
	p := New(time.Hour, func(ctx context.Context) (any, error) {
		fetched <- struct{}{}
		return 1, nil
	}, func(any) {})

	go p.Run(ctx)

	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatalf("no immediate fetch")
	}
	p.Kick()
	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatalf("kick did not trigger a fetch")
	}
}
