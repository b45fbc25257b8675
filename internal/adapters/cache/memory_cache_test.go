package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
)

func newTestMemoryCache() *MemoryCache {
	return NewMemoryCache(zap.NewNop(), time.Hour)
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestMemoryCache()
	defer c.Stop()
	ctx := context.Background()

	verdict := &core.Verdict{IsSafe: false, Label: core.LabelSuspicious, RiskScore: 5}
	c.Set(ctx, "key1", verdict, time.Hour)

	got, ok := c.Get(ctx, "key1")
	if !ok {
		t.Fatal("Get returned miss for a stored key")
	}
	if got != verdict {
		t.Error("Get returned a different verdict")
	}

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Get returned a hit for an unknown key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestMemoryCache()
	defer c.Stop()
	ctx := context.Background()

	c.Set(ctx, "key1", &core.Verdict{}, -time.Second)

	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("Get returned an expired entry")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestMemoryCache()
	defer c.Stop()
	ctx := context.Background()

	c.Set(ctx, "key1", &core.Verdict{}, time.Hour)
	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("entry survived Delete")
	}
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestMemoryCache()
	defer c.Stop()
	ctx := context.Background()

	c.Set(ctx, "stale", &core.Verdict{}, -time.Second)
	c.Set(ctx, "fresh", &core.Verdict{}, time.Hour)

	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	c.mu.RLock()
	_, staleKept := c.entries["stale"]
	_, freshKept := c.entries["fresh"]
	c.mu.RUnlock()

	if staleKept {
		t.Error("Cleanup kept an expired entry")
	}
	if !freshKept {
		t.Error("Cleanup dropped a live entry")
	}
}
