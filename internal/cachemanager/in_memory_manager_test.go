package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/greta-mvc/flowmap/internal/diagram"
)

type cacheKey string

func newDomainCache() *InMemoryCacheManager[cacheKey, []diagram.ClassificationDomain] {
	return NewInMemoryCacheManager[cacheKey, []diagram.ClassificationDomain]("domains", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := newDomainCache()
	domains := []diagram.ClassificationDomain{{ID: 1, Name: "Energy"}}
	cache.Set(context.Background(), "flowmap", domains, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "flowmap")
	require.True(t, ok)
	require.Equal(t, domains, got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := newDomainCache()
	got, ok := cache.Get(context.Background(), "flowmap")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_GetWrongType(t *testing.T) {
	cache := newDomainCache()
	cache.cache.Set("flowmap", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "flowmap")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_GetMultiple(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, string]("names", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.GetMultiple(context.Background(), nil)
	require.False(t, ok)
	require.Nil(t, got)

	cache.Set(context.Background(), "a", "alpha", DefaultExpiration)
	cache.Set(context.Background(), "b", "beta", DefaultExpiration)
	cache.cache.Set("c", 3, DefaultExpiration)

	got, ok = cache.GetMultiple(context.Background(), []cacheKey{"a", "b", "c", "missing"})
	require.True(t, ok)
	require.Equal(t, map[cacheKey]string{"a": "alpha", "b": "beta"}, got)

	got, ok = cache.GetMultiple(context.Background(), []cacheKey{"x", "y"})
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, string]("names", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "a", "alpha", 20*time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, string]("names", DefaultExpiration, DefaultCleanupInterval)

	_, ok := cache.GetWithRefresh(context.Background(), "a", time.Hour)
	require.False(t, ok)

	cache.Set(context.Background(), "a", "alpha", 50*time.Millisecond)
	got, ok := cache.GetWithRefresh(context.Background(), "a", time.Hour)
	require.True(t, ok)
	require.Equal(t, "alpha", got)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get(context.Background(), "a")
	require.True(t, ok, "refresh extended the ttl")
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, string]("names", DefaultExpiration, DefaultCleanupInterval)
	require.NoError(t, cache.Delete(context.Background()))

	cache.Set(context.Background(), "a", "alpha", DefaultExpiration)
	cache.Set(context.Background(), "b", "beta", DefaultExpiration)

	require.NoError(t, cache.Delete(context.Background(), "a"))
	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)

	require.NoError(t, cache.Flush(context.Background()))
	_, ok = cache.Get(context.Background(), "b")
	require.False(t, ok)
}
