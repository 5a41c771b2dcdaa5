package product

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock для тестирования TTL
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testProduct(id int64) *Product {
	return &Product{
		ID:       id,
		Name:     "pen",
		Price:    decimal.NewFromInt(10),
		Category: "stationery",
		IsActive: true,
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cache := NewMemoryCache(time.Hour, clock)
	ctx := context.Background()

	cache.Set(ctx, 1, testProduct(1))

	p, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, int64(1), p.ID)
}

func TestMemoryCache_Miss(t *testing.T) {
	cache := NewMemoryCache(time.Hour, &fakeClock{now: time.Now()})

	_, ok := cache.Get(context.Background(), 404)
	assert.False(t, ok)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cache := NewMemoryCache(time.Hour, clock)
	ctx := context.Background()

	cache.Set(ctx, 1, testProduct(1))

	// До истечения TTL запись жива
	clock.Advance(59 * time.Minute)
	_, ok := cache.Get(ctx, 1)
	assert.True(t, ok)

	// После истечения TTL запись вытеснена
	clock.Advance(2 * time.Minute)
	_, ok = cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryCache_Evict(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cache := NewMemoryCache(time.Hour, clock)
	ctx := context.Background()

	cache.Set(ctx, 1, testProduct(1))
	cache.Evict(ctx, 1)

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cache := NewMemoryCache(time.Hour, clock)
	ctx := context.Background()

	cache.Set(ctx, 1, testProduct(1))

	p1, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	p1.Name = "mutated"

	p2, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "pen", p2.Name)
}
