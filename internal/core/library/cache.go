// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/platform/constants"
)

// # Ownership Cache

// OwnershipCache stores positive ownership answers by key.
type OwnershipCache interface {
	// Lookup returns one hit flag per key, in order.
	Lookup(ctx context.Context, keys []string) ([]bool, error)
	// Remember marks keys as owned for ttl.
	Remember(ctx context.Context, keys []string, ttl time.Duration) error
}

type redisCache struct {
	client redis.UniversalClient
}

// NewRedisCache returns an [OwnershipCache] backed by Redis.
func NewRedisCache(client redis.UniversalClient) OwnershipCache {
	return &redisCache{client: client}
}

func (cache *redisCache) Lookup(ctx context.Context, keys []string) ([]bool, error) {
	values, err := cache.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	hits := make([]bool, len(keys))
	for index, value := range values {
		hits[index] = value != nil
	}
	return hits, nil
}

func (cache *redisCache) Remember(ctx context.Context, keys []string, ttl time.Duration) error {
	pipe := cache.client.Pipeline()
	for _, key := range keys {
		pipe.Set(ctx, key, "1", ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// OwnershipKey is the cache key for one (user, target) pair.
func OwnershipKey(userID int64, target entitlement.Target) string {
	return fmt.Sprintf("%s%d:%s:%d", constants.RedisPrefixOwnership, userID, target.Kind, target.ID)
}

/*
CachedOracle fronts a [BatchOracle] with an [OwnershipCache].

Description: Purchases are never revoked, so only "owned" answers are cached.
A negative answer always goes to the source and a fresh purchase is visible
immediately. Cache failures are logged and the source answers instead.
*/
type CachedOracle struct {
	next   BatchOracle
	cache  OwnershipCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedOracle wraps next with cache. Entries expire after ttl.
func NewCachedOracle(next BatchOracle, cache OwnershipCache, ttl time.Duration, logger *slog.Logger) *CachedOracle {
	return &CachedOracle{next: next, cache: cache, ttl: ttl, logger: logger}
}

// OwnsPurchase answers for a single target.
func (oracle *CachedOracle) OwnsPurchase(ctx context.Context, userID int64, target entitlement.Target) (bool, error) {
	owned, err := oracle.OwnedAmong(ctx, userID, []entitlement.Target{target})
	if err != nil {
		return false, err
	}
	return owned[target], nil
}

// OwnedAmong serves cached positives and asks the source for the rest.
func (oracle *CachedOracle) OwnedAmong(ctx context.Context, userID int64, targets []entitlement.Target) (map[entitlement.Target]bool, error) {
	owned := make(map[entitlement.Target]bool, len(targets))
	if len(targets) == 0 {
		return owned, nil
	}

	keys := make([]string, len(targets))
	for index, target := range targets {
		keys[index] = OwnershipKey(userID, target)
	}

	// 1. Cached positives
	hits, err := oracle.cache.Lookup(ctx, keys)
	if err != nil {
		oracle.logger.WarnContext(ctx, "ownership_cache_unavailable", slog.String("error", err.Error()))
		hits = make([]bool, len(keys))
	}

	var misses []entitlement.Target
	for index, target := range targets {
		if hits[index] {
			owned[target] = true
			continue
		}
		misses = append(misses, target)
	}
	if len(misses) == 0 {
		return owned, nil
	}

	// 2. Source of truth for the rest
	fresh, err := oracle.next.OwnedAmong(ctx, userID, misses)
	if err != nil {
		return nil, err
	}

	var remember []string
	for _, target := range misses {
		if fresh[target] {
			owned[target] = true
			remember = append(remember, OwnershipKey(userID, target))
		}
	}

	// 3. Write back new positives
	if len(remember) > 0 {
		if err := oracle.cache.Remember(ctx, remember, oracle.ttl); err != nil {
			oracle.logger.WarnContext(ctx, "ownership_cache_write_failed", slog.String("error", err.Error()))
		}
	}
	return owned, nil
}
