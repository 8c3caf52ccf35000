package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"slidecraft/pkg/domain"
)

const redisCacheTimeout = 2 * time.Second

// RedisCache is the Redis-backed cache backend. Entries expire via Redis TTL
// and a sorted-set index ordered by write time drives capacity eviction.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
}

// NewRedisCache connects a cache to the given Redis address.
func NewRedisCache(addr, password, prefix string, ttl time.Duration, maxEntries int) *RedisCache {
	if prefix == "" {
		prefix = "slidecraft:cache"
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix:     prefix,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *RedisCache) key(fingerprint string) string {
	return c.prefix + ":" + fingerprint
}

func (c *RedisCache) indexKey() string {
	return c.prefix + ":index"
}

// Get returns the cached slides for a fingerprint. Redis errors and corrupt
// payloads are both treated as misses.
func (c *RedisCache) Get(fingerprint string) ([]domain.Slide, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()
	data, err := c.client.Get(ctx, c.key(fingerprint)).Bytes()
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("skipping corrupt cache entry", "fingerprint", fingerprint, "err", err)
		return nil, false
	}
	return entry.Slides, true
}

// Put upserts an entry with the configured TTL and evicts the oldest entries
// when the index grows past capacity. Failures are logged and swallowed.
func (c *RedisCache) Put(fingerprint string, entry Entry) {
	entry.CachedAt = time.Now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("marshal cache entry", "fingerprint", fingerprint, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key(fingerprint), data, c.ttl).Err(); err != nil {
		slog.Warn("write cache entry", "fingerprint", fingerprint, "err", err)
		return
	}
	if err := c.client.ZAdd(ctx, c.indexKey(), redis.Z{
		Score:  float64(entry.CachedAt.UnixNano()),
		Member: fingerprint,
	}).Err(); err != nil {
		slog.Warn("index cache entry", "fingerprint", fingerprint, "err", err)
		return
	}
	c.evictCapacity(ctx)
}

func (c *RedisCache) evictCapacity(ctx context.Context) {
	total, err := c.client.ZCard(ctx, c.indexKey()).Result()
	if err != nil || total <= int64(c.maxEntries) {
		return
	}
	excess := total - int64(c.maxEntries)
	oldest, err := c.client.ZRange(ctx, c.indexKey(), 0, excess-1).Result()
	if err != nil || len(oldest) == 0 {
		return
	}
	keys := make([]string, 0, len(oldest))
	for _, fp := range oldest {
		keys = append(keys, c.key(fp))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("evict cache entries", "err", err)
	}
	if err := c.client.ZRemRangeByRank(ctx, c.indexKey(), 0, excess-1).Err(); err != nil {
		slog.Warn("trim cache index", "err", err)
	}
}

// Clear removes all entries unconditionally.
func (c *RedisCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()
	fingerprints, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(fingerprints)+1)
	for _, fp := range fingerprints {
		keys = append(keys, c.key(fp))
	}
	keys = append(keys, c.indexKey())
	return c.client.Del(ctx, keys...).Err()
}

// Stats reports entry counts and aggregate stored size.
func (c *RedisCache) Stats() CacheStats {
	stats := CacheStats{
		Location:   "redis",
		MaxEntries: c.maxEntries,
		TTLHours:   int(c.ttl / time.Hour),
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()
	fingerprints, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return stats
	}
	stats.TotalEntries = len(fingerprints)
	for _, fp := range fingerprints {
		size, err := c.client.StrLen(ctx, c.key(fp)).Result()
		if err != nil || size == 0 {
			// Key expired; the index entry is stale.
			continue
		}
		stats.ValidEntries++
		stats.TotalSizeBytes += size
	}
	return stats
}
