package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingKey(t *testing.T) {
	assert.Equal(t, "invoices:list:0:1:", ListingKey(0, "", 1))
	assert.Equal(t, "invoices:list:0:2:acme", ListingKey(0, "acme", 2))
	assert.Equal(t, "invoices:list:3:1:a+b%3Ac", ListingKey(3, "a b:c", 1))
	assert.NotEqual(t, ListingKey(0, "acme", 1), ListingKey(0, "acme", 2))
	assert.NotEqual(t, ListingKey(0, "acme", 1), ListingKey(1, "acme", 1))
}

func TestMemoryStore_InvalidateByTag(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), "dashboard/invoices"))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), "dashboard/invoices"))
	require.NoError(t, s.Set(ctx, "c", []byte("3"), "dashboard/customers"))

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, s.Invalidate(ctx, "dashboard/invoices"))

	_, ok, _ = s.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "c")
	assert.True(t, ok, "other tags are untouched")

	// invalidating an unknown tag is a no-op
	assert.NoError(t, s.Invalidate(ctx, "nothing"))
}

func TestMemoryStore_GenerationAdvancesOnInvalidate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	gen, err := s.Generation(ctx, "dashboard/invoices")
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, s.Invalidate(ctx, "dashboard/invoices"))
	require.NoError(t, s.Invalidate(ctx, "dashboard/invoices"))

	gen, err = s.Generation(ctx, "dashboard/invoices")
	require.NoError(t, err)
	assert.EqualValues(t, 2, gen)

	gen, err = s.Generation(ctx, "dashboard/customers")
	require.NoError(t, err)
	assert.Zero(t, gen, "generations are per tag")
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewRedisStore(RedisConfig{URL: "not-a-redis-url", TTL: time.Minute}, logger)

	assert.ErrorContains(t, err, "failed to parse Redis URL")
}
