package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisCatalogCache(client *redis.Client) *RedisCatalogCache {
	return &RedisCatalogCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

// RedisCatalogCache stores rendered catalog views indexed by tag. Each view
// key is a member of the set of every tag it was stored under, so
// invalidating a tag drops every view that depends on it.
type RedisCatalogCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCatalogCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, viewKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return data, nil
}

func (r *RedisCatalogCache) Set(ctx context.Context, key string, value []byte, tags []string) error {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, viewKey(key), value, ttl)
	for _, tag := range dedupe(tags) {
		pipe.SAdd(ctx, tagKey(tag), viewKey(key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops every view stored under any of the given tags. Duplicate
// tags collapse to a single deletion per tag.
func (r *RedisCatalogCache) Invalidate(ctx context.Context, tags []string) error {
	for _, tag := range dedupe(tags) {
		members, err := r.client.SMembers(ctx, tagKey(tag)).Result()
		if err != nil {
			return fmt.Errorf("redis smembers failed: %w", err)
		}

		keys := append(members, tagKey(tag))
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
	}
	return nil
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func viewKey(key string) string {
	return fmt.Sprintf("view:%s", key)
}

func tagKey(tag string) string {
	return fmt.Sprintf("tag:%s", tag)
}
