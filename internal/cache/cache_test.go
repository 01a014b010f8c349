package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	_, ok := mc.Get(ctx, "missing")
	assert.False(t, ok, "expected miss for unknown key")

	mc.Set(ctx, "friends:1:2", "accepted", time.Minute)
	value, ok := mc.Get(ctx, "friends:1:2")
	assert.True(t, ok, "expected hit after set")
	assert.Equal(t, "accepted", value, "expected cached value to match")
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	mc.Set(ctx, "member:7:3", "member", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := mc.Get(ctx, "member:7:3")
	assert.False(t, ok, "expected entry to expire after its TTL")
}
