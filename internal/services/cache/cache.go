// Package cache memoizes generated answers for identical generation inputs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/synth-respondents-go/internal/config"
	"github.com/synth-respondents-go/internal/models"
)

// Service defines cache operations
type Service interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, model, text string) error
	Len(ctx context.Context) int
	Clear(ctx context.Context) error
}

// Fingerprint derives the cache key of a generation. Two pairs share an entry only
// when persona, question, model, backend and temperature all match.
func Fingerprint(p *models.Persona, q models.Question, model, backend string, temperature float64) string {
	snapshot, err := json.Marshal(p)
	if err != nil {
		snapshot = []byte(p.ID)
	}
	h := sha256.New()
	h.Write(snapshot)
	fmt.Fprintf(h, "\x00%s\x00%s\x00%s\x00%s\x00%s\x00%.3f", q.ID, q.Text, q.Type, model, backend, temperature)
	for _, opt := range q.Options {
		fmt.Fprintf(h, "\x00%s", opt)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewCache creates the configured cache. The redis variant needs a client and is
// scoped to runID.
func NewCache(cfg *config.Config, client *redis.Client, runID string, logger *logrus.Logger) (Service, error) {
	if !cfg.Cache.Enabled {
		return &Cache{enabled: false}, nil
	}

	switch cfg.Cache.Type {
	case "", "memory":
		return NewMemoryCache(logger), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis cache requires redis storage")
		}
		return NewRedisCache(client, cfg.Storage.Redis.Prefix, runID, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Cache.Type)
	}
}

// Cache implements the in-memory cache
type Cache struct {
	enabled bool
	cache   *cache.Cache
	logger  *logrus.Logger
}

// NewMemoryCache creates an in-memory cache whose entries never expire
func NewMemoryCache(logger *logrus.Logger) *Cache {
	return &Cache{
		enabled: true,
		cache:   cache.New(cache.NoExpiration, 0),
		logger:  logger,
	}
}

// Get retrieves a cached response
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	if val, found := c.cache.Get(key); found {
		entry := val.(*models.CacheEntry)
		c.logger.WithFields(logrus.Fields{
			"key":   shortKey(key),
			"model": entry.Model,
			"age":   time.Since(entry.CreatedAt),
		}).Debug("Cache hit")
		return entry.Text, true
	}

	return "", false
}

// Set stores a response in cache
func (c *Cache) Set(ctx context.Context, key, model, text string) error {
	if !c.enabled {
		return nil
	}

	c.cache.Set(key, &models.CacheEntry{
		Fingerprint: key,
		Text:        text,
		Model:       model,
		CreatedAt:   time.Now(),
	}, cache.NoExpiration)
	c.logger.WithFields(logrus.Fields{
		"key":   shortKey(key),
		"model": model,
	}).Debug("Response cached")

	return nil
}

// Len returns the number of cached entries
func (c *Cache) Len(ctx context.Context) int {
	if !c.enabled {
		return 0
	}
	return c.cache.ItemCount()
}

// Clear removes all cached entries
func (c *Cache) Clear(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	c.cache.Flush()
	c.logger.Info("Cache cleared")
	return nil
}

// RedisCache keeps entries in one redis hash per run
type RedisCache struct {
	client *redis.Client
	key    string
	logger *logrus.Logger
}

// NewRedisCache creates a run-scoped redis cache
func NewRedisCache(client *redis.Client, prefix, runID string, logger *logrus.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		key:    fmt.Sprintf("%s:%s:cache", prefix, runID),
		logger: logger,
	}
}

// Get retrieves a cached response
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	data, err := r.client.HGet(ctx, r.key, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		r.logger.WithError(err).Warn("Failed to read cache entry")
		return "", false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		r.logger.WithError(err).Warn("Failed to decode cache entry")
		return "", false
	}
	return entry.Text, true
}

// Set stores a response in cache
func (r *RedisCache) Set(ctx context.Context, key, model, text string) error {
	data, err := json.Marshal(models.CacheEntry{
		Fingerprint: key,
		Text:        text,
		Model:       model,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.key, key, data).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Len returns the number of cached entries
func (r *RedisCache) Len(ctx context.Context) int {
	n, err := r.client.HLen(ctx, r.key).Result()
	if err != nil {
		r.logger.WithError(err).Warn("Failed to count cache entries")
		return 0
	}
	return int(n)
}

// Clear removes all cached entries of the run
func (r *RedisCache) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	r.logger.Info("Cache cleared")
	return nil
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
