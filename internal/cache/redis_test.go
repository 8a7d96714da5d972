package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := testCache(t)

	var got []string
	if c.GetCollection(ctx, "clients", &got) {
		t.Fatal("expected a miss on an empty cache")
	}

	c.SetCollection(ctx, "clients", []string{"alpha", "beta"})
	if !c.GetCollection(ctx, "clients", &got) {
		t.Fatal("expected a hit after SetCollection")
	}
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("unexpected cached list: %v", got)
	}

	c.InvalidateCollection(ctx, "clients")
	got = nil
	if c.GetCollection(ctx, "clients", &got) {
		t.Fatal("expected a miss after invalidation")
	}
}

func TestCollectionKeysAreScopedPerEntity(t *testing.T) {
	ctx := context.Background()
	c := testCache(t)

	c.SetCollection(ctx, "clients", []string{"a"})
	c.SetCollection(ctx, "personnel", []string{"b"})
	c.InvalidateCollection(ctx, "clients")

	var got []string
	if c.GetCollection(ctx, "clients", &got) {
		t.Fatal("clients list should be gone")
	}
	if !c.GetCollection(ctx, "personnel", &got) {
		t.Fatal("personnel list should survive a clients invalidation")
	}
}

func TestNilCacheIsInert(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	var got []string
	if c.GetCollection(ctx, "clients", &got) {
		t.Fatal("nil cache must always miss")
	}
	c.SetCollection(ctx, "clients", []string{"a"})
	c.InvalidateCollection(ctx, "clients")
}
