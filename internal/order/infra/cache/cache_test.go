package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/nomino/internal/order/app"
	"github.com/dwikikusuma/nomino/internal/order/domain"
)

func setupCache(t *testing.T) (*OrderCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewOrderCache(client, time.Minute), mr
}

func sampleOrder() domain.Order {
	return domain.Order{
		ID:         "7b0e1c7a-3f8e-4a54-9a7e-0c3f3f1b2d10",
		UserID:     "alice",
		Status:     domain.StatusPending,
		TotalPrice: decimal.RequireFromString("13.50"),
		Address:    "Jl. Anggrek 2",
		Lines: []domain.Line{
			domain.NewLine("a", "Nasi Goreng", 2, decimal.RequireFromString("5.00")),
			domain.NewLine("b", "Es Teh", 1, decimal.RequireFromString("3.50")),
		},
		CreatedAt: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestSetThenGet(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()
	o := sampleOrder()

	require.NoError(t, cache.Set(ctx, o, 0))

	ttl := mr.TTL(cacheKey(o.ID))
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+12*time.Second)

	got, err := cache.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, got.TotalPrice.Equal(o.TotalPrice))
	require.Len(t, got.Lines, 2)
	assert.True(t, got.Lines[0].UnitPrice.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, got.CreatedAt.Equal(o.CreatedAt))
}

func TestGetMiss(t *testing.T) {
	cache, _ := setupCache(t)
	_, err := cache.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, app.ErrCacheMiss)
}

func TestGetCorrupt(t *testing.T) {
	cache, mr := setupCache(t)
	require.NoError(t, mr.Set(cacheKey("x"), "{not json"))

	_, err := cache.Get(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, app.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()
	o := sampleOrder()

	require.NoError(t, cache.Set(ctx, o, 0))
	require.NoError(t, cache.Delete(ctx, o.ID))
	assert.False(t, mr.Exists(cacheKey(o.ID)))

	v, err := cache.Version(ctx, o.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	assert.Greater(t, mr.TTL(versionKey(o.ID)), time.Duration(0))
}

func TestSetSkipsFillReadBeforeDelete(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()
	o := sampleOrder()

	before, err := cache.Version(ctx, o.ID)
	require.NoError(t, err)
	assert.Zero(t, before)

	require.NoError(t, cache.Delete(ctx, o.ID))

	require.NoError(t, cache.Set(ctx, o, before))
	assert.False(t, mr.Exists(cacheKey(o.ID)))

	after, err := cache.Version(ctx, o.ID)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, o, after))
	assert.True(t, mr.Exists(cacheKey(o.ID)))
}

func TestUnavailable(t *testing.T) {
	cache, mr := setupCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, app.ErrCacheMiss)
}
