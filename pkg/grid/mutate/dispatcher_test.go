package mutate

import (
	"context"
	"errors"
	"testing"

	"github.com/parlaygames/pitboss/pkg/grid/query"
	"github.com/parlaygames/pitboss/pkg/listcache"
)

type countingCache struct {
	listcache.Store
	invalidated []string
}

func (c *countingCache) InvalidateView(ctx context.Context, view string) error {
	c.invalidated = append(c.invalidated, view)
	return c.Store.InvalidateView(ctx, view)
}

func TestDispatchInvalidatesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	cache := &countingCache{Store: listcache.NewMemory()}
	key := query.NewState(10).Key("users")
	_ = cache.Store.Set(ctx, key, []byte("stale"), 0)

	var calls int
	d := New(DoerFunc(func(ctx context.Context, req Request) error {
		calls++
		return nil
	}), cache)

	if err := d.Dispatch(ctx, Request{Resource: "users", Kind: Update, IDs: []string{"u1"}, Payload: map[string]any{"status": "banned"}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("backend called %d times, want 1", calls)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "users" {
		t.Fatalf("invalidate calls: %v", cache.invalidated)
	}
	if _, ok, _ := cache.Store.Get(ctx, key); ok {
		t.Fatalf("stale list must be gone after the mutation")
	}
	if p, err := d.Phase(); p != Succeeded || err != nil {
		t.Fatalf("phase after success: %v %v", p, err)
	}
}

func TestDispatchFailureLeavesCacheAlone(t *testing.T) {
	ctx := context.Background()
	cache := &countingCache{Store: listcache.NewMemory()}
	key := query.NewState(10).Key("users")
	_ = cache.Store.Set(ctx, key, []byte("cached"), 0)

	boom := errors.New("backend down")
	d := New(DoerFunc(func(ctx context.Context, req Request) error { return boom }), cache)

	var seen []Phase
	d.OnChange(func(p Phase, err error) { seen = append(seen, p) })

	if err := d.Dispatch(ctx, Request{Resource: "users", Kind: Delete, IDs: []string{"u1"}}); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if len(cache.invalidated) != 0 {
		t.Fatalf("failure must not invalidate")
	}
	if _, ok, _ := cache.Store.Get(ctx, key); !ok {
		t.Fatalf("cached list must survive a failed mutation")
	}
	if p, err := d.Phase(); p != Failed || !errors.Is(err, boom) {
		t.Fatalf("phase after failure: %v %v", p, err)
	}
	want := []Phase{Pending, Failed}
	for i, p := range want {
		if seen[i] != p {
			t.Fatalf("transitions: got %v want %v", seen, want)
		}
	}
}

func TestBulkIsOneRequestPerBatch(t *testing.T) {
	ctx := context.Background()
	var reqs []Request
	d := New(DoerFunc(func(ctx context.Context, req Request) error {
		reqs = append(reqs, req)
		return nil
	}), listcache.NewMemory())

	ids := []string{"u1", "u2", "u3", "u4"}
	if err := d.DispatchBulk(ctx, "users", ids, BulkOp{Field: "status", Value: "suspended"}); err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("bulk must issue one request per batch, got %d", len(reqs))
	}
	if reqs[0].Kind != BulkUpdate || len(reqs[0].IDs) != 4 {
		t.Fatalf("bulk request shape: %+v", reqs[0])
	}
}

func TestDispatchRejectsEmptyResource(t *testing.T) {
	d := New(DoerFunc(func(ctx context.Context, req Request) error { return nil }), nil)
	if err := d.Dispatch(context.Background(), Request{Kind: Create}); err == nil {
		t.Fatalf("empty resource should be rejected")
	}
}
