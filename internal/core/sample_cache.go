package core

// sample_cache.go keeps recently fetched source bodies so the mapping wizard
// can re-inspect a response without hitting the upstream API on every step.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SampleCache stores raw response bodies keyed by source fingerprint.
type SampleCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

const sampleKeyPrefix = "feedmap:sample:"

// SampleKey fingerprints the parts of a source that affect the response.
func SampleKey(src Source) string {
	h := sha256.New()
	h.Write([]byte(strings.ToUpper(src.method())))
	h.Write([]byte{0})
	h.Write([]byte(src.URL))
	h.Write([]byte{0})

	names := make([]string, 0, len(src.Headers))
	for name := range src.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Write([]byte(strings.ToLower(name) + ":" + src.Headers[name]))
		h.Write([]byte{0})
	}
	h.Write([]byte(string(src.AuthType) + ":" + src.AuthHeader + ":" + src.AuthToken))
	h.Write([]byte{0})
	h.Write([]byte(src.Body))

	return sampleKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// RedisSampleCache stores samples in Redis.
type RedisSampleCache struct {
	client *redis.Client
}

// NewRedisSampleCache wraps an existing client.
func NewRedisSampleCache(client *redis.Client) *RedisSampleCache {
	return &RedisSampleCache{client: client}
}

func (c *RedisSampleCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisSampleCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, body, ttl).Err()
}

type memoryEntry struct {
	expires time.Time
	body    []byte
}

// MemorySampleCache is a process-local cache used when Redis is not configured.
type MemorySampleCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySampleCache creates an empty in-process cache.
func NewMemorySampleCache() *MemorySampleCache {
	return &MemorySampleCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemorySampleCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[key]
	if !found {
		return nil, false, nil
	}
	if !entry.expires.After(c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.body, true, nil
}

func (c *MemorySampleCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Sweep on write so abandoned wizard sessions don't accumulate.
	now := c.now()
	for k, e := range c.entries {
		if !e.expires.After(now) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memoryEntry{expires: now.Add(ttl), body: body}
	return nil
}
