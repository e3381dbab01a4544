// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/library"
	"github.com/taibuivan/inkwell/internal/core/node"
)

var (
	ownedBook   = entitlement.Target{Kind: node.KindBook, ID: 1}
	unownedBook = entitlement.Target{Kind: node.KindBook, ID: 2}
)

// countingOracle owns ownedBook for user 7 and records every batch it serves.
type countingOracle struct {
	mu      sync.Mutex
	batches [][]entitlement.Target
	err     error
}

func (oracle *countingOracle) OwnsPurchase(ctx context.Context, userID int64, target entitlement.Target) (bool, error) {
	owned, err := oracle.OwnedAmong(ctx, userID, []entitlement.Target{target})
	return owned[target], err
}

func (oracle *countingOracle) OwnedAmong(_ context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error) {
	oracle.mu.Lock()
	defer oracle.mu.Unlock()

	oracle.batches = append(oracle.batches, append([]entitlement.Target(nil), targets...))
	if oracle.err != nil {
		return nil, oracle.err
	}

	owned := map[entitlement.Target]bool{}
	for _, target := range targets {
		if userID == 7 && target == ownedBook {
			owned[target] = true
		}
	}
	return owned, nil
}

func (oracle *countingOracle) lookups() int {
	oracle.mu.Lock()
	defer oracle.mu.Unlock()

	total := 0
	for _, batch := range oracle.batches {
		total += len(batch)
	}
	return total
}

// mapCache is an in-memory OwnershipCache.
type mapCache struct {
	entries map[string]time.Duration
	failing bool
}

func (cache *mapCache) Lookup(_ context.Context, keys []string) ([]bool, error) {
	if cache.failing {
		return nil, errors.New("connection refused")
	}
	hits := make([]bool, len(keys))
	for index, key := range keys {
		_, hits[index] = cache.entries[key]
	}
	return hits, nil
}

func (cache *mapCache) Remember(_ context.Context, keys []string, ttl time.Duration) error {
	if cache.failing {
		return errors.New("connection refused")
	}
	for _, key := range keys {
		cache.entries[key] = ttl
	}
	return nil
}

func TestOracle_OverRepository(t *testing.T) {
	ctx := context.Background()
	repo := library.NewMemoryRepository()
	purchase, _ := library.NewPurchase(7, ownedBook)
	require.NoError(t, repo.Create(ctx, purchase))

	oracle := library.NewOracle(repo)

	owns, err := oracle.OwnsPurchase(ctx, 7, ownedBook)
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = oracle.OwnsPurchase(ctx, 8, ownedBook)
	require.NoError(t, err)
	assert.False(t, owns)

	var _ entitlement.Oracle = oracle
}

func TestCachedOracle_CachesPositivesOnly(t *testing.T) {
	ctx := context.Background()
	source := &countingOracle{}
	cache := &mapCache{entries: map[string]time.Duration{}}
	oracle := library.NewCachedOracle(source, cache, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	owned, err := oracle.OwnedAmong(ctx, 7, []entitlement.Target{ownedBook, unownedBook})
	require.NoError(t, err)
	assert.Equal(t, map[entitlement.Target]bool{ownedBook: true}, owned)

	assert.Contains(t, cache.entries, library.OwnershipKey(7, ownedBook))
	assert.NotContains(t, cache.entries, library.OwnershipKey(7, unownedBook))
	assert.Equal(t, time.Hour, cache.entries[library.OwnershipKey(7, ownedBook)])

	// Second round: the positive is served from cache, the negative is re-asked.
	owned, err = oracle.OwnedAmong(ctx, 7, []entitlement.Target{ownedBook, unownedBook})
	require.NoError(t, err)
	assert.True(t, owned[ownedBook])
	require.Len(t, source.batches, 2)
	assert.Equal(t, []entitlement.Target{unownedBook}, source.batches[1])
}

func TestCachedOracle_FallsThroughOnCacheFailure(t *testing.T) {
	source := &countingOracle{}
	cache := &mapCache{entries: map[string]time.Duration{}, failing: true}
	oracle := library.NewCachedOracle(source, cache, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	owns, err := oracle.OwnsPurchase(context.Background(), 7, ownedBook)
	require.NoError(t, err)
	assert.True(t, owns)
	assert.Equal(t, 1, source.lookups())
}

func TestCachedOracle_SourceError(t *testing.T) {
	source := &countingOracle{err: errors.New("db down")}
	cache := &mapCache{entries: map[string]time.Duration{}}
	oracle := library.NewCachedOracle(source, cache, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := oracle.OwnsPurchase(context.Background(), 7, ownedBook)
	assert.Error(t, err)
}

func TestOwnershipKey(t *testing.T) {
	assert.Equal(t, "library:owns:7:Book:1", library.OwnershipKey(7, ownedBook))
}

func TestMemoOracle_OncePerKeyPerRequest(t *testing.T) {
	source := &countingOracle{}
	oracle := library.NewMemoOracle(source)
	ctx := library.WithLoaders(context.Background(), library.NewLoaders(source))

	for i := 0; i < 3; i++ {
		owns, err := oracle.OwnsPurchase(ctx, 7, ownedBook)
		require.NoError(t, err)
		assert.True(t, owns)
	}
	assert.Equal(t, 1, source.lookups())

	// A fresh request starts with an empty memo.
	fresh := library.WithLoaders(context.Background(), library.NewLoaders(source))
	_, err := oracle.OwnsPurchase(fresh, 7, ownedBook)
	require.NoError(t, err)
	assert.Equal(t, 2, source.lookups())
}

func TestMemoOracle_PrefetchServesLaterLookups(t *testing.T) {
	source := &countingOracle{}
	oracle := library.NewMemoOracle(source)
	ctx := library.WithLoaders(context.Background(), library.NewLoaders(source))

	owned, err := oracle.OwnedAmong(ctx, 7, []entitlement.Target{ownedBook, unownedBook})
	require.NoError(t, err)
	assert.Equal(t, map[entitlement.Target]bool{ownedBook: true}, owned)

	owns, err := oracle.OwnsPurchase(ctx, 7, unownedBook)
	require.NoError(t, err)
	assert.False(t, owns)
	assert.Equal(t, 2, source.lookups())
}

func TestMemoOracle_WithoutLoaders(t *testing.T) {
	source := &countingOracle{}
	oracle := library.NewMemoOracle(source)

	for i := 0; i < 2; i++ {
		_, err := oracle.OwnsPurchase(context.Background(), 7, ownedBook)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, source.lookups())
}

func TestMiddleware_InstallsLoaders(t *testing.T) {
	var installed *library.Loaders
	handler := library.Middleware(&countingOracle{})(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		installed = library.LoadersFrom(request.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, installed)
	assert.Nil(t, library.LoadersFrom(context.Background()))
}
