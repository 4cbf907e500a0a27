package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*PageCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPageCache(client, ttl), srv
}

func TestPageCacheRoundTrip(t *testing.T) {
	pc, _ := newTestCache(t, 0)
	ctx := context.Background()
	workspaceID := uuid.New()

	if _, ok := pc.Get(ctx, workspaceID, "home"); ok {
		t.Fatal("hit on empty cache")
	}

	pc.Set(ctx, workspaceID, "home", []byte(`{"page":{}}`))
	got, ok := pc.Get(ctx, workspaceID, "home")
	if !ok {
		t.Fatal("miss after set")
	}
	if string(got) != `{"page":{}}` {
		t.Errorf("cached payload = %q", got)
	}

	// Same slug in another workspace is a separate entry.
	if _, ok := pc.Get(ctx, uuid.New(), "home"); ok {
		t.Error("entry leaked across workspaces")
	}
}

func TestPageCacheTTL(t *testing.T) {
	pc, srv := newTestCache(t, time.Minute)
	ctx := context.Background()
	workspaceID := uuid.New()

	pc.Set(ctx, workspaceID, "home", []byte("x"))
	if ttl := srv.TTL(pageKey(workspaceID, "home")); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	srv.FastForward(2 * time.Minute)
	if _, ok := pc.Get(ctx, workspaceID, "home"); ok {
		t.Error("entry survived its ttl")
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	pc, _ := newTestCache(t, 0)
	ctx := context.Background()
	workspaceID := uuid.New()

	pc.Set(ctx, workspaceID, "home", []byte("x"))
	pc.Set(ctx, workspaceID, "about", []byte("y"))

	pc.Invalidate(workspaceID, "home")
	if _, ok := pc.Get(ctx, workspaceID, "home"); ok {
		t.Error("invalidated entry still cached")
	}
	if _, ok := pc.Get(ctx, workspaceID, "about"); !ok {
		t.Error("invalidate removed an unrelated entry")
	}
}

func TestPageCacheInvalidateWorkspace(t *testing.T) {
	pc, _ := newTestCache(t, 0)
	ctx := context.Background()
	mine := uuid.New()
	theirs := uuid.New()

	pc.Set(ctx, mine, "home", []byte("x"))
	pc.Set(ctx, mine, "about", []byte("y"))
	pc.Set(ctx, theirs, "home", []byte("z"))

	pc.InvalidateWorkspace(ctx, mine)
	if _, ok := pc.Get(ctx, mine, "home"); ok {
		t.Error("workspace entry survived invalidation")
	}
	if _, ok := pc.Get(ctx, mine, "about"); ok {
		t.Error("workspace entry survived invalidation")
	}
	if _, ok := pc.Get(ctx, theirs, "home"); !ok {
		t.Error("other workspace's entry was removed")
	}
}

func TestPageCacheDegradesWhenDown(t *testing.T) {
	pc, srv := newTestCache(t, 0)
	ctx := context.Background()
	workspaceID := uuid.New()

	srv.Close()

	// A broken cache must act like a permanent miss, never an error.
	pc.Set(ctx, workspaceID, "home", []byte("x"))
	if _, ok := pc.Get(ctx, workspaceID, "home"); ok {
		t.Error("hit from a closed backend")
	}
	pc.Invalidate(workspaceID, "home")
}
