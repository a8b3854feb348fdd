package cache_test

import (
	"context"
	"testing"
	"time"

	"cafeblog/internal/cache"
)

func TestMemoryGetSetDelete(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	ctx := context.Background()

	if _, hit := c.Get(ctx, "missing"); hit {
		t.Fatal("empty cache should miss")
	}

	c.Set(ctx, "k", []byte("v"))

	got, hit := c.Get(ctx, "k")

	if !hit || string(got) != "v" {
		t.Fatalf("got %q hit=%v, want v", got, hit)
	}

	c.Delete(ctx, "k")

	if _, hit := c.Get(ctx, "k"); hit {
		t.Fatal("deleted key should miss")
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := cache.NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))

	time.Sleep(30 * time.Millisecond)

	if _, hit := c.Get(ctx, "k"); hit {
		t.Fatal("entry should have expired")
	}
}

func TestMemoryClear(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	c.Clear()

	if _, hit := c.Get(ctx, "a"); hit {
		t.Fatal("cleared cache should miss")
	}
}
